// Package output renders companylock-cli results and live feedback.
//
//   - formatter.go: Formatter interface and factory (table, json, yaml)
//   - table.go: tabwriter tables and the Tabular interface
//   - views.go: table views of directory, audit, token and session data
//   - spinner.go: animation while a request is in flight
//   - countdown.go, progress.go: reveal window rendering
//   - notice.go: notice printing on stderr
//
// Machine formats never include a revealed secret.
package output
