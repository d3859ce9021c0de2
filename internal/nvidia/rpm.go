//go:build !disable_nvml

package nvidia

/* // nvmlDeviceGetFanSpeedRPM() was added in driver v565 and is not exposed by go-nvml,
 // so it is looked up at runtime to keep supporting older drivers.
 #include <stddef.h>
 #include <dlfcn.h>

 struct fanSpeedInfo {
	unsigned int version; // NVML_STRUCT_VERSION(FanSpeedInfo, 1)
	unsigned int fan;
	unsigned int speed;   // OUT: RPM
 };

 static int (*getFanSpeedRPMFn)(void*, struct fanSpeedInfo*) = NULL;
 static int (*getDevHandleFn)(unsigned int, void**) = NULL;

 // returns nvmlReturn_t; device is nvmlDevice_t
 int nvfc_GetFanSpeedRPM(void* device, int fanIdx, int* outSpeed) {
	const unsigned structVersion = (unsigned)(sizeof(struct fanSpeedInfo) | 1 << 24U);
	if(getFanSpeedRPMFn == NULL || device == NULL) {
		*outSpeed = -1;
		return 13; // NVML_ERROR_FUNCTION_NOT_FOUND
	}
	struct fanSpeedInfo info = { structVersion, fanIdx, 0 };
	int ret = getFanSpeedRPMFn(device, &info);
	*outSpeed = ret == 0 ? (int)info.speed : -1;
	return ret;
 }

 // returns the raw nvmlDevice_t of the device at index, or NULL
 void* nvfc_DeviceGetRawHandleByIndex(int index) {
	void* ret = NULL;
	if(getDevHandleFn == NULL) {
		return NULL;
	}
	if(getDevHandleFn(index, &ret) == 0) {
		return ret;
	}
	return NULL;
 }

 void nvfc_InitFunctionPointers() {
	void* dlHandle = dlopen(NULL, RTLD_NOW);
	if(dlHandle != NULL) {
		getDevHandleFn = dlsym(dlHandle, "nvmlDeviceGetHandleByIndex_v2");
		getFanSpeedRPMFn = dlsym(dlHandle, "nvmlDeviceGetFanSpeedRPM");
	}
 }
*/
import "C"

import (
	"unsafe"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

type rawDevice unsafe.Pointer

// must be called after nvml.Init(), which loads libnvidia-ml
func initRpmFunctions() {
	C.nvfc_InitFunctionPointers()
}

// go-nvml does not expose the C nvmlDevice_t, so it is fetched again by index
func getRawDeviceHandleByIndex(index int) rawDevice {
	return rawDevice(C.nvfc_DeviceGetRawHandleByIndex(C.int(index)))
}

func getFanSpeedRpm(device rawDevice, fan int) (int, nvml.Return) {
	var speed C.int = 0
	ret := C.nvfc_GetFanSpeedRPM(unsafe.Pointer(device), C.int(fan), &speed)
	return int(speed), nvml.Return(ret)
}
