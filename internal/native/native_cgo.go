//go:build cgo && sundials

package native

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -L/usr/local/lib64 -lsundials_cvode -lsundials_kinsol -lsundials_nvecserial -lsundials_sunmatrixdense -lsundials_sunlinsoldense -lsundials_sunlinsolspgmr -lm
#include <stdlib.h>
#include <sundials/sundials_version.h>

static int sunml_version(char *buf, int len) {
	return SUNDIALSGetVersion(buf, len);
}
*/
import "C"

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

var (
	cvodeTable  atomic.Pointer[CVodeCallbacks]
	kinsolTable atomic.Pointer[KinsolCallbacks]

	// rootCounts maps a user-data key to the number of root functions
	// registered with RootInit; the native root callback does not carry it.
	rootCounts sync.Map // map[uintptr]int
)

// Linked reports whether the SUNDIALS libraries were linked into the binary.
func Linked() bool { return true }

// Version returns the version string of the linked SUNDIALS library.
func Version() string {
	buf := (*C.char)(C.malloc(64))
	defer C.free(unsafe.Pointer(buf))
	if C.sunml_version(buf, 64) != 0 {
		return ""
	}
	return C.GoString(buf)
}

// NewCVode returns the cgo-backed CVODE library. Every callback fired by any
// CVODE memory created through it is forwarded to cb.
func NewCVode(cb *CVodeCallbacks) (CVodeLib, error) {
	if cb == nil {
		return nil, ErrNotBuilt
	}
	cvodeTable.Store(cb)
	return cvodeLib{}, nil
}

// NewKinsol returns the cgo-backed KINSOL library.
func NewKinsol(cb *KinsolCallbacks) (KinsolLib, error) {
	if cb == nil {
		return nil, ErrNotBuilt
	}
	kinsolTable.Store(cb)
	return kinsolLib{}, nil
}

// realSlice exposes n doubles of native storage as a Go slice without
// copying. A nil pointer yields a nil slice.
func realSlice(p *C.double, n C.long) []float64 {
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(p)), int(n))
}
