// Package ipc implements the named log channel between the native host and
// the process that injected it.
//
// Records are single-line JSON objects terminated by CRLF, discriminated by a
// "$type" field in the form the managed CoreHook IPC layer reads. On Windows a
// channel is a named pipe (\\.\pipe\<name>); elsewhere it is a Unix domain
// socket at $TMPDIR/CoreFxPipe_<name>, the path .NET uses for
// NamedPipeServerStream.
//
// The writing side opens a fresh connection for every short burst of records,
// so a Listener must accept repeated short-lived connections.
package ipc
