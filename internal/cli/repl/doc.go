// Package repl provides the interactive mode of companylock-cli.
//
// Each line is split into arguments and handed to an Executor, which
// runs it through the same command tree as single-command mode. History
// is kept on disk with token values masked.
package repl
