// Package process supervises a long-running helper process.
//
// The host uses it to keep a local Fadecandy server (fcserver) alive next
// to the OPC output: the server is started with the host, restarted with
// exponential backoff when it exits, and stopped with SIGTERM (then
// SIGKILL) when the host shuts down. Its stdout and stderr are logged at
// debug level.
//
//	mgr := process.NewManager(process.Config{
//	    Name:   "fcserver",
//	    Binary: "/usr/local/bin/fcserver",
//	    Args:   []string{"/etc/fcserver.json"},
//	})
//	go mgr.Run(ctx)
package process
