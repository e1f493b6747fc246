//go:build cgo

/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// Command nativehost builds the corehost shared library:
//
//	go build -buildmode=c-shared -o corehost.so ./cmd/nativehost
//
// Strings in the exported structs are fixed-size, NUL-terminated UTF-16
// buffers on every platform.
package main

/*
#include <stdint.h>

#define MAX_PATH_LENGTH 260
#define FUNCTION_NAME_SIZE 256

typedef struct core_host_arguments {
	uint16_t assembly_file_path[MAX_PATH_LENGTH];
	uint16_t core_root_path[MAX_PATH_LENGTH];
	uint16_t pipe_name[FUNCTION_NAME_SIZE];
} core_host_arguments;

typedef struct assembly_function_call {
	uint16_t assembly_path[FUNCTION_NAME_SIZE];
	uint16_t type_name_qualified[FUNCTION_NAME_SIZE];
	uint16_t method_name[FUNCTION_NAME_SIZE];
	uint16_t pipe_name[FUNCTION_NAME_SIZE];
	const uint16_t* payload;
} assembly_function_call;
*/
import "C"

import (
	"unicode/utf16"
	"unsafe"

	"github.com/blacktop/go-corehost"
)

//export StartCoreCLR
func StartCoreCLR(args *C.core_host_arguments) C.int {
	if args == nil {
		return C.int(corehost.StatusInvalidArgument)
	}
	return C.int(corehost.StartCoreCLR(corehost.HostArguments{
		AssemblyFilePath: wideField(args.assembly_file_path[:]),
		CoreRootPath:     wideField(args.core_root_path[:]),
		PipeName:         wideField(args.pipe_name[:]),
	}))
}

//export CreateAssemblyDelegate
func CreateAssemblyDelegate(args *C.assembly_function_call, out *C.uintptr_t) C.int {
	if args == nil || out == nil {
		return C.int(corehost.StatusInvalidArgument)
	}
	var fn uintptr
	rc := corehost.CreateAssemblyDelegate(functionCall(args), &fn)
	if rc == 0 {
		*out = C.uintptr_t(fn)
	}
	return C.int(rc)
}

//export ExecuteAssemblyFunction
func ExecuteAssemblyFunction(args *C.assembly_function_call) C.int {
	if args == nil {
		return C.int(corehost.StatusInvalidArgument)
	}
	return C.int(corehost.ExecuteAssemblyFunction(functionCall(args)))
}

//export UnloadRuntime
func UnloadRuntime() C.int {
	return C.int(corehost.UnloadRuntime())
}

func functionCall(args *C.assembly_function_call) corehost.AssemblyFunctionCall {
	return corehost.AssemblyFunctionCall{
		AssemblyPath:      wideField(args.assembly_path[:]),
		TypeNameQualified: wideField(args.type_name_qualified[:]),
		MethodName:        wideField(args.method_name[:]),
		PipeName:          wideField(args.pipe_name[:]),
		Payload:           wideBytes(args.payload),
	}
}

// wideField decodes a fixed-size buffer up to its first NUL. A buffer with
// no NUL decodes in full, which then fails the length check.
func wideField(buf []C.uint16_t) string {
	if len(buf) == 0 {
		return ""
	}
	u := unsafe.Slice((*uint16)(unsafe.Pointer(&buf[0])), len(buf))
	for i, c := range u {
		if c == 0 {
			u = u[:i]
			break
		}
	}
	return string(utf16.Decode(u))
}

// wideBytes views a NUL-terminated UTF-16 string, terminator included,
// without copying; the managed callee receives the caller's pointer.
func wideBytes(p *C.uint16_t) []byte {
	if p == nil {
		return nil
	}
	n := 0
	for *(*uint16)(unsafe.Add(unsafe.Pointer(p), n*2)) != 0 {
		n++
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), (n+1)*2)
}

func main() {}
