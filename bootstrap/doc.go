// Package bootstrap runs a routekit binary through a uniform lifecycle:
// start registered components, run the task, stop components in reverse
// order. SIGINT and SIGTERM cancel the task.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(scheduler)
//	err = app.RunTask(ctx, app.Components.WaitAll)
package bootstrap
