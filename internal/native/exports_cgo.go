//go:build cgo && sundials

package native

// Exported callbacks for the C shims. The preamble must contain declarations
// only, because this file uses //export.

/*
#include <stdint.h>
*/
import "C"

// Each export looks up the trampoline table once and returns -1 if no table
// was registered; a missing table means the library was never constructed
// through NewCVode/NewKinsol.

//export goCVodeRhs
func goCVodeRhs(t C.double, y, ydot *C.double, n C.long, ud C.uintptr_t) C.int {
	cb := cvodeTable.Load()
	if cb == nil || cb.RHS == nil {
		return -1
	}
	return C.int(cb.RHS(uintptr(ud), float64(t), realSlice(y, n), realSlice(ydot, n)))
}

//export goCVodeRoots
func goCVodeRoots(t C.double, y *C.double, n C.long, gout *C.double, ud C.uintptr_t) C.int {
	cb := cvodeTable.Load()
	if cb == nil || cb.Roots == nil {
		return -1
	}
	nroots, _ := rootCounts.Load(uintptr(ud))
	count, _ := nroots.(int)
	return C.int(cb.Roots(uintptr(ud), float64(t), realSlice(y, n), realSlice(gout, C.long(count))))
}

//export goCVodeErrH
func goCVodeErrH(code C.int, module, function, msg *C.char, ud C.uintptr_t) {
	cb := cvodeTable.Load()
	if cb == nil || cb.ErrH == nil {
		return
	}
	cb.ErrH(uintptr(ud), int(code), C.GoString(module), C.GoString(function), C.GoString(msg))
}

//export goCVodeJac
func goCVodeJac(t C.double, y, fy *C.double, n C.long, data *C.double, rows, cols C.long, tmp1, tmp2, tmp3 *C.double, ud C.uintptr_t) C.int {
	cb := cvodeTable.Load()
	if cb == nil || cb.Jac == nil {
		return -1
	}
	jac := Dense{Data: realSlice(data, rows*cols), Rows: int(rows), Cols: int(cols)}
	tmp := [3][]float64{realSlice(tmp1, n), realSlice(tmp2, n), realSlice(tmp3, n)}
	return C.int(cb.Jac(uintptr(ud), float64(t), realSlice(y, n), realSlice(fy, n), jac, tmp))
}

//export goCVodePrecSetup
func goCVodePrecSetup(t C.double, y, fy *C.double, n C.long, jok C.int, jcur *C.int, gamma C.double, ud C.uintptr_t) C.int {
	cb := cvodeTable.Load()
	if cb == nil || cb.PrecSetup == nil {
		return -1
	}
	cur, status := cb.PrecSetup(uintptr(ud), float64(t), realSlice(y, n), realSlice(fy, n), jok != 0, float64(gamma))
	if cur {
		*jcur = 1
	} else {
		*jcur = 0
	}
	return C.int(status)
}

//export goCVodePrecSolve
func goCVodePrecSolve(t C.double, y, fy, r, z *C.double, n C.long, gamma, delta C.double, lr C.int, ud C.uintptr_t) C.int {
	cb := cvodeTable.Load()
	if cb == nil || cb.PrecSolve == nil {
		return -1
	}
	return C.int(cb.PrecSolve(uintptr(ud), float64(t), realSlice(y, n), realSlice(fy, n),
		realSlice(r, n), realSlice(z, n), float64(gamma), float64(delta), lr == 1))
}

//export goCVodeProj
func goCVodeProj(t C.double, ycur, corr *C.double, n C.long, eps C.double, errv *C.double, ud C.uintptr_t) C.int {
	cb := cvodeTable.Load()
	if cb == nil || cb.Proj == nil {
		return -1
	}
	return C.int(cb.Proj(uintptr(ud), float64(t), realSlice(ycur, n), realSlice(corr, n), float64(eps), realSlice(errv, n)))
}

//export goCVodeMonitor
func goCVodeMonitor(t C.double, ud C.uintptr_t) C.int {
	cb := cvodeTable.Load()
	if cb == nil || cb.Monitor == nil {
		return -1
	}
	return C.int(cb.Monitor(uintptr(ud), float64(t)))
}

//export goKinsolSys
func goKinsolSys(u, fval *C.double, n C.long, ud C.uintptr_t) C.int {
	cb := kinsolTable.Load()
	if cb == nil || cb.Sys == nil {
		return -1
	}
	return C.int(cb.Sys(uintptr(ud), realSlice(u, n), realSlice(fval, n)))
}

//export goKinsolJac
func goKinsolJac(u, fu *C.double, n C.long, data *C.double, rows, cols C.long, tmp1, tmp2 *C.double, ud C.uintptr_t) C.int {
	cb := kinsolTable.Load()
	if cb == nil || cb.Jac == nil {
		return -1
	}
	jac := Dense{Data: realSlice(data, rows*cols), Rows: int(rows), Cols: int(cols)}
	return C.int(cb.Jac(uintptr(ud), realSlice(u, n), realSlice(fu, n), jac, [2][]float64{realSlice(tmp1, n), realSlice(tmp2, n)}))
}

//export goKinsolPrecSetup
func goKinsolPrecSetup(u, uscale, fval, fscale *C.double, n C.long, ud C.uintptr_t) C.int {
	cb := kinsolTable.Load()
	if cb == nil || cb.PrecSetup == nil {
		return -1
	}
	return C.int(cb.PrecSetup(uintptr(ud), realSlice(u, n), realSlice(uscale, n), realSlice(fval, n), realSlice(fscale, n)))
}

//export goKinsolPrecSolve
func goKinsolPrecSolve(u, uscale, fval, fscale, v *C.double, n C.long, ud C.uintptr_t) C.int {
	cb := kinsolTable.Load()
	if cb == nil || cb.PrecSolve == nil {
		return -1
	}
	return C.int(cb.PrecSolve(uintptr(ud), realSlice(u, n), realSlice(uscale, n), realSlice(fval, n),
		realSlice(fscale, n), realSlice(v, n)))
}

//export goKinsolErrH
func goKinsolErrH(code C.int, module, function, msg *C.char, ud C.uintptr_t) {
	cb := kinsolTable.Load()
	if cb == nil || cb.ErrH == nil {
		return
	}
	cb.ErrH(uintptr(ud), int(code), C.GoString(module), C.GoString(function), C.GoString(msg))
}

//export goKinsolInfoH
func goKinsolInfoH(module, function, msg *C.char, ud C.uintptr_t) {
	cb := kinsolTable.Load()
	if cb == nil || cb.InfoH == nil {
		return
	}
	cb.InfoH(uintptr(ud), C.GoString(module), C.GoString(function), C.GoString(msg))
}
