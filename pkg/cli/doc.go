/*
Package cli provides command-line helpers for the routemetrics command.

Output Formatting:

The snapshot command prints in one of three formats:

	format, err := cli.ParseOutputFormat("json")
	...
	cli.WriteJSON(os.Stdout, snapshot)

Text output is written as titled sections of aligned fields:

	cli.WriteSections(os.Stdout, []cli.Section{
		{Title: "Errors", Fields: []cli.Field{{Name: "total", Value: "4"}}},
	})

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	sigChan := cli.WaitForShutdown()
	<-sigChan

Errors:

ConfigError reports a bad flag or configuration value; CommandError wraps
the failure of a subcommand.
*/
package cli
