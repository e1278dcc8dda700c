// Package resilience holds the two fault-handling patterns pmnps uses.
//
//   - Retry re-runs flaky commands such as package installs with
//     exponential backoff.
//   - Bulkhead caps how many member processes run at once inside a batch.
//
//	err := resilience.RetryFunc(ctx, resilience.InstallRetryConfig(cfg.Install.Retries), func() error {
//	    return runner.Run(ctx, "install")
//	})
package resilience
