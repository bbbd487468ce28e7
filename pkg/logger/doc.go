// Package logger provides a small factory around Go's slog package plus
// attribute helpers that keep log field naming consistent across the
// workflow engine (workflow_id, record_id, from, to, event).
//
// # Usage
//
//	log := logger.New(
//	    logger.WithDevelopment("docflow"),
//	)
//	logger.SetAsDefault(log)
//
//	log.Info("transition completed",
//	    logger.WorkflowID("invoice"),
//	    logger.RecordID(id),
//	    logger.FromState("sent"),
//	    logger.ToState("paid"),
//	)
//
// The factory is configured through functional options: WithDevelopment /
// WithProduction presets, or WithLevel, WithFormat, WithOutput, and WithAttr
// individually. Defaults are production safe (JSON at info level).
package logger
