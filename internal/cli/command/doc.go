// Package command provides the companylock-cli command tree.
//
// Commands are defined with urfave/cli/v2 and share one Runtime per
// process: the configuration is resolved in the Before hook, and the
// session store, request pipeline and flows are built the first time a
// command needs them. Interactive mode (repl) runs every line through
// the same tree on the shared Runtime.
package command
