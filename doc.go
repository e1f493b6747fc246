// Package corehost hosts the .NET runtime inside a native process through
// the hostfxr hosting API.
//
// A Host locates and loads hostfxr, initializes a runtime from an
// assembly's .runtimeconfig.json, and keeps the resulting
// load_assembly_and_get_function_pointer delegate for the life of the
// process. Managed methods marked UnmanagedCallersOnly with the signature
// int Method(IntPtr payload) can then be resolved and invoked.
//
// Progress and failures of every stage are reported as JSON records on an
// optional named log channel (see package ipc). The channel is best-effort:
// if nothing listens, results are unchanged.
//
// # Basic Usage
//
// Check if the platform is supported:
//
//	supported, err := corehost.Supported()
//	if err != nil || !supported {
//		log.Fatal("runtime hosting not supported on this system")
//	}
//
// Start the runtime and call a managed method:
//
//	host := corehost.NewHost()
//	err = host.Start(corehost.HostArguments{
//		AssemblyFilePath: "/opt/app/Plugin.dll",
//		CoreRootPath:     "/usr/share/dotnet",
//		PipeName:         "my-pipe",
//	})
//	if err != nil {
//		log.Fatal("Failed to start runtime:", err)
//	}
//
//	call, err := corehost.NewAssemblyFunctionCall("/opt/app", "Plugin.Entry.Run", "my-pipe", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	rc, err := host.ExecuteAssemblyFunction(call)
//
// # Error Handling
//
// Every error matches one of the Err* sentinels with errors.Is and carries a
// hostfxr status code in a HostError. Status flattens an error into the
// integer codes returned by StartCoreCLR and friends. Set COREHOST_ENV=production
// to reduce error text to a short category.
//
// # Platform Support
//
// Linux, macOS and FreeBSD load hostfxr through purego; Windows uses
// LoadLibrary. Other platforms return "not supported" errors.
//
// # Limitations
//
// The runtime cannot be unloaded. UnloadRuntime exists for ABI
// compatibility and does nothing.
package corehost
