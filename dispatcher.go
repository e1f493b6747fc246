package corehost

import (
	"fmt"
	"time"
)

// ExecuteAssemblyFunction resolves call and invokes it with call.Payload,
// returning the managed status. The log channel is released for the duration
// of the managed call and reopened afterwards.
func (h *Host) ExecuteAssemblyFunction(call AssemblyFunctionCall) (int32, error) {
	log := openLogChannel(h.dial, h.channelName(call.PipeName))
	log.Info("Creating assembly function delegate for " + call.QualifiedMethod())

	fn, err := h.CreateAssemblyDelegate(call)
	if err != nil {
		code := Status(err)
		log.Error(fmt.Sprintf("Failed with error code 0x%08x: %v", uint32(code), err))
		log.close()
		if !isValidationError(err) {
			recordInvocationFailure()
		}
		return code, err
	}

	log.Info("Done, executing...")
	log.close()

	start := time.Now()
	rc := h.invoke(fn, call.Payload)
	recordInvocation(time.Since(start))

	log.open()
	log.Info(fmt.Sprintf("Returned %d", rc))
	log.close()
	return rc, nil
}
