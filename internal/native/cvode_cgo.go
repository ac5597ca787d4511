//go:build cgo && sundials

package native

/*
#include <stdint.h>
#include <stdlib.h>
#include <cvode/cvode.h>
#include <nvector/nvector_serial.h>
#include <sunmatrix/sunmatrix_dense.h>
#include <sunlinsol/sunlinsol_dense.h>
#include <sunlinsol/sunlinsol_spgmr.h>

extern int goCVodeRhs(double, double*, double*, long, uintptr_t);
extern int goCVodeRoots(double, double*, long, double*, uintptr_t);
extern void goCVodeErrH(int, char*, char*, char*, uintptr_t);
extern int goCVodeJac(double, double*, double*, long, double*, long, long, double*, double*, double*, uintptr_t);
extern int goCVodePrecSetup(double, double*, double*, long, int, int*, double, uintptr_t);
extern int goCVodePrecSolve(double, double*, double*, double*, double*, long, double, double, int, uintptr_t);
extern int goCVodeProj(double, double*, double*, long, double, double*, uintptr_t);
extern int goCVodeMonitor(double, uintptr_t);

#define NV_PTR(v) ((v) == NULL ? NULL : N_VGetArrayPointer(v))

static int cv_rhs(sunrealtype t, N_Vector y, N_Vector ydot, void *ud) {
	return goCVodeRhs(t, NV_PTR(y), NV_PTR(ydot), (long)N_VGetLength(y), (uintptr_t)ud);
}

static int cv_roots(sunrealtype t, N_Vector y, sunrealtype *gout, void *ud) {
	return goCVodeRoots(t, NV_PTR(y), (long)N_VGetLength(y), gout, (uintptr_t)ud);
}

static void cv_errh(int code, const char *module, const char *function, char *msg, void *ud) {
	goCVodeErrH(code, (char *)module, (char *)function, msg, (uintptr_t)ud);
}

static int cv_jac(sunrealtype t, N_Vector y, N_Vector fy, SUNMatrix J, void *ud,
		  N_Vector tmp1, N_Vector tmp2, N_Vector tmp3) {
	return goCVodeJac(t, NV_PTR(y), NV_PTR(fy), (long)N_VGetLength(y),
			  SUNDenseMatrix_Data(J), (long)SUNDenseMatrix_Rows(J),
			  (long)SUNDenseMatrix_Columns(J),
			  NV_PTR(tmp1), NV_PTR(tmp2), NV_PTR(tmp3), (uintptr_t)ud);
}

static int cv_psetup(sunrealtype t, N_Vector y, N_Vector fy, sunbooleantype jok,
		     sunbooleantype *jcur, sunrealtype gamma, void *ud) {
	int cur = 0;
	int r = goCVodePrecSetup(t, NV_PTR(y), NV_PTR(fy), (long)N_VGetLength(y),
				 jok, &cur, gamma, (uintptr_t)ud);
	*jcur = cur;
	return r;
}

static int cv_psolve(sunrealtype t, N_Vector y, N_Vector fy, N_Vector r, N_Vector z,
		     sunrealtype gamma, sunrealtype delta, int lr, void *ud) {
	return goCVodePrecSolve(t, NV_PTR(y), NV_PTR(fy), NV_PTR(r), NV_PTR(z),
				(long)N_VGetLength(y), gamma, delta, lr, (uintptr_t)ud);
}

static int cv_proj(sunrealtype t, N_Vector ycur, N_Vector corr, sunrealtype eps,
		   N_Vector err, void *ud) {
	return goCVodeProj(t, NV_PTR(ycur), NV_PTR(corr), (long)N_VGetLength(ycur),
			   eps, NV_PTR(err), (uintptr_t)ud);
}

#ifdef SUNDIALS_BUILD_WITH_MONITORING
static int cv_monitor(void *mem, void *ud) {
	sunrealtype t = 0;
	CVodeGetCurrentTime(mem, &t);
	return goCVodeMonitor(t, (uintptr_t)ud);
}
#endif

static void *cv_create(int lmm, SUNContext *ctx) {
	void *mem;
	if (SUNContext_Create(NULL, ctx) != 0) return NULL;
	mem = CVodeCreate(lmm == 0 ? CV_ADAMS : CV_BDF, *ctx);
	if (mem == NULL) SUNContext_Free(ctx);
	return mem;
}

static int cv_init(void *mem, sunrealtype t0, double *y0, long n, SUNContext ctx) {
	int flag;
	N_Vector v = N_VMake_Serial(n, y0, ctx);
	if (v == NULL) return CV_MEM_FAIL;
	flag = CVodeInit(mem, cv_rhs, t0, v);
	N_VDestroy(v);
	return flag;
}

static int cv_reinit(void *mem, sunrealtype t0, double *y0, long n, SUNContext ctx) {
	int flag;
	N_Vector v = N_VMake_Serial(n, y0, ctx);
	if (v == NULL) return CV_MEM_FAIL;
	flag = CVodeReInit(mem, t0, v);
	N_VDestroy(v);
	return flag;
}

static int cv_set_user_data(void *mem, uintptr_t ud) {
	return CVodeSetUserData(mem, (void *)ud);
}

static int cv_set_errh(void *mem, uintptr_t ud, int on) {
	if (on) return CVodeSetErrHandlerFn(mem, cv_errh, (void *)ud);
	return CVodeSetErrHandlerFn(mem, NULL, NULL);
}

static int cv_root_init(void *mem, int nroots) {
	return CVodeRootInit(mem, nroots, nroots > 0 ? cv_roots : NULL);
}

static int cv_set_dense(void *mem, long n, int userjac, SUNContext ctx,
			SUNMatrix *A, SUNLinearSolver *LS) {
	int flag;
	N_Vector tmpl = N_VNew_Serial(n, ctx);
	if (tmpl == NULL) return CVLS_MEM_FAIL;
	*A = SUNDenseMatrix(n, n, ctx);
	*LS = (*A == NULL) ? NULL : SUNLinSol_Dense(tmpl, *A, ctx);
	N_VDestroy(tmpl);
	if (*LS == NULL) return CVLS_MEM_FAIL;
	flag = CVodeSetLinearSolver(mem, *LS, *A);
	if (flag != CVLS_SUCCESS) return flag;
	return CVodeSetJacFn(mem, userjac ? cv_jac : NULL);
}

static int cv_set_spgmr(void *mem, long n, int psetup, int psolve, SUNContext ctx,
			SUNLinearSolver *LS) {
	int flag;
	N_Vector tmpl = N_VNew_Serial(n, ctx);
	if (tmpl == NULL) return CVLS_MEM_FAIL;
	*LS = SUNLinSol_SPGMR(tmpl, psolve ? SUN_PREC_LEFT : SUN_PREC_NONE, 0, ctx);
	N_VDestroy(tmpl);
	if (*LS == NULL) return CVLS_MEM_FAIL;
	flag = CVodeSetLinearSolver(mem, *LS, NULL);
	if (flag != CVLS_SUCCESS || !psolve) return flag;
	return CVodeSetPreconditioner(mem, psetup ? cv_psetup : NULL, cv_psolve);
}

static int cv_set_proj(void *mem) {
	return CVodeSetProjFn(mem, cv_proj);
}

static int cv_set_monitor(void *mem, long freq) {
#ifdef SUNDIALS_BUILD_WITH_MONITORING
	int flag = CVodeSetMonitorFn(mem, freq > 0 ? cv_monitor : NULL);
	if (flag != CV_SUCCESS || freq <= 0) return flag;
	return CVodeSetMonitorFrequency(mem, freq);
#else
	return CV_ILL_INPUT;
#endif
}

static int cv_solve(void *mem, sunrealtype tout, double *yout, long n, int task,
		    sunrealtype *tret, SUNContext ctx) {
	int flag;
	N_Vector v = N_VMake_Serial(n, yout, ctx);
	if (v == NULL) return CV_MEM_FAIL;
	flag = CVode(mem, tout, v, tret, task == 0 ? CV_NORMAL : CV_ONE_STEP);
	N_VDestroy(v);
	return flag;
}

static void cv_free(void *mem, SUNContext ctx, SUNMatrix A, SUNLinearSolver LS) {
	CVodeFree(&mem);
	if (LS != NULL) SUNLinSolFree(LS);
	if (A != NULL) SUNMatDestroy(A);
	SUNContext_Free(&ctx);
}
*/
import "C"

import (
	"runtime"
	"unsafe"
)

// Compile-time checks that the Go flag table matches the linked headers.
var (
	_ = [1]struct{}{}[CVTooMuchWork-C.CV_TOO_MUCH_WORK]
	_ = [1]struct{}{}[C.CV_TOO_MUCH_WORK-CVTooMuchWork]
	_ = [1]struct{}{}[CVIllInput-C.CV_ILL_INPUT]
	_ = [1]struct{}{}[C.CV_ILL_INPUT-CVIllInput]
	_ = [1]struct{}{}[CVReptdProjFuncErr-C.CV_REPTD_PROJFUNC_ERR]
	_ = [1]struct{}{}[C.CV_REPTD_PROJFUNC_ERR-CVReptdProjFuncErr]
)

type cvodeMem struct {
	ptr unsafe.Pointer
	ctx C.SUNContext
	mat C.SUNMatrix
	ls  C.SUNLinearSolver
	ud  uintptr
	n   int
}

type cvodeLib struct{}

func cvmem(mem Mem) *cvodeMem {
	m, _ := mem.(*cvodeMem)
	if m == nil || m.ptr == nil {
		return nil
	}
	return m
}

// pinned returns a pointer to the first element of v, pinned until the
// returned pinner is unpinned. Callers must Unpin before returning.
func pinned(v []float64) (*C.double, *runtime.Pinner) {
	p := new(runtime.Pinner)
	if len(v) == 0 {
		return nil, p
	}
	p.Pin(&v[0])
	return (*C.double)(unsafe.Pointer(&v[0])), p
}

func (cvodeLib) Create(lmm LMM) Mem {
	m := &cvodeMem{}
	m.ptr = C.cv_create(C.int(lmm), &m.ctx)
	if m.ptr == nil {
		return nil
	}
	return m
}

func (cvodeLib) Init(mem Mem, t0 float64, y0 []float64) int {
	m := cvmem(mem)
	if m == nil {
		return CVMemNull
	}
	p, pin := pinned(y0)
	defer pin.Unpin()
	m.n = len(y0)
	return int(C.cv_init(m.ptr, C.sunrealtype(t0), p, C.long(len(y0)), m.ctx))
}

func (cvodeLib) SetUserData(mem Mem, ud uintptr) int {
	m := cvmem(mem)
	if m == nil {
		return CVMemNull
	}
	m.ud = ud
	return int(C.cv_set_user_data(m.ptr, C.uintptr_t(ud)))
}

func (cvodeLib) SetErrHandler(mem Mem, on bool) int {
	m := cvmem(mem)
	if m == nil {
		return CVMemNull
	}
	return int(C.cv_set_errh(m.ptr, C.uintptr_t(m.ud), cbool(on)))
}

func (cvodeLib) SStolerances(mem Mem, rtol, atol float64) int {
	m := cvmem(mem)
	if m == nil {
		return CVMemNull
	}
	return int(C.CVodeSStolerances(m.ptr, C.sunrealtype(rtol), C.sunrealtype(atol)))
}

func (cvodeLib) SetMaxNumSteps(mem Mem, n int64) int {
	m := cvmem(mem)
	if m == nil {
		return CVMemNull
	}
	return int(C.CVodeSetMaxNumSteps(m.ptr, C.long(n)))
}

func (cvodeLib) SetStopTime(mem Mem, tstop float64) int {
	m := cvmem(mem)
	if m == nil {
		return CVMemNull
	}
	return int(C.CVodeSetStopTime(m.ptr, C.sunrealtype(tstop)))
}

func (cvodeLib) SetInitStep(mem Mem, h float64) int {
	m := cvmem(mem)
	if m == nil {
		return CVMemNull
	}
	return int(C.CVodeSetInitStep(m.ptr, C.sunrealtype(h)))
}

func (cvodeLib) RootInit(mem Mem, nroots int) int {
	m := cvmem(mem)
	if m == nil {
		return CVMemNull
	}
	if nroots > 0 {
		rootCounts.Store(m.ud, nroots)
	} else {
		rootCounts.Delete(m.ud)
	}
	return int(C.cv_root_init(m.ptr, C.int(nroots)))
}

func (cvodeLib) SetDenseLinearSolver(mem Mem, n int, userJac bool) int {
	m := cvmem(mem)
	if m == nil {
		return CVLSMemNull
	}
	m.releaseLinearSolver()
	return int(C.cv_set_dense(m.ptr, C.long(n), cbool(userJac), m.ctx, &m.mat, &m.ls))
}

func (cvodeLib) SetSPGMR(mem Mem, n int, precSetup, precSolve bool) int {
	m := cvmem(mem)
	if m == nil {
		return CVLSMemNull
	}
	m.releaseLinearSolver()
	return int(C.cv_set_spgmr(m.ptr, C.long(n), cbool(precSetup), cbool(precSolve), m.ctx, &m.ls))
}

func (cvodeLib) SetProjFn(mem Mem, on bool) int {
	m := cvmem(mem)
	if m == nil {
		return CVMemNull
	}
	if !on {
		return CVIllInput
	}
	return int(C.cv_set_proj(m.ptr))
}

func (cvodeLib) SetMonitorFn(mem Mem, freq int64) int {
	m := cvmem(mem)
	if m == nil {
		return CVMemNull
	}
	return int(C.cv_set_monitor(m.ptr, C.long(freq)))
}

func (cvodeLib) Solve(mem Mem, tout float64, yout []float64, task Task) (float64, int) {
	m := cvmem(mem)
	if m == nil {
		return 0, CVMemNull
	}
	p, pin := pinned(yout)
	defer pin.Unpin()
	var tret C.sunrealtype
	flag := C.cv_solve(m.ptr, C.sunrealtype(tout), p, C.long(len(yout)), C.int(task), &tret, m.ctx)
	return float64(tret), int(flag)
}

func (cvodeLib) ReInit(mem Mem, t0 float64, y0 []float64) int {
	m := cvmem(mem)
	if m == nil {
		return CVMemNull
	}
	p, pin := pinned(y0)
	defer pin.Unpin()
	return int(C.cv_reinit(m.ptr, C.sunrealtype(t0), p, C.long(len(y0)), m.ctx))
}

func (cvodeLib) GetRootInfo(mem Mem, rootsFound []int) int {
	m := cvmem(mem)
	if m == nil {
		return CVMemNull
	}
	if len(rootsFound) == 0 {
		return CVSuccess
	}
	buf := make([]C.int, len(rootsFound))
	flag := int(C.CVodeGetRootInfo(m.ptr, &buf[0]))
	for i, v := range buf {
		rootsFound[i] = int(v)
	}
	return flag
}

func (cvodeLib) GetStats(mem Mem) (CVodeStats, int) {
	m := cvmem(mem)
	if m == nil {
		return CVodeStats{}, CVMemNull
	}
	var (
		nsteps, nfevals, nlinsetups, netfails C.long
		qlast, qcur                           C.int
		hinused, hlast, hcur, tcur            C.sunrealtype
	)
	flag := C.CVodeGetIntegratorStats(m.ptr, &nsteps, &nfevals, &nlinsetups, &netfails,
		&qlast, &qcur, &hinused, &hlast, &hcur, &tcur)
	if flag != C.CV_SUCCESS {
		return CVodeStats{}, int(flag)
	}
	st := CVodeStats{
		Steps:          int64(nsteps),
		RHSEvals:       int64(nfevals),
		LinSolvSetups:  int64(nlinsetups),
		ErrTestFails:   int64(netfails),
		LastOrder:      int(qlast),
		CurrentOrder:   int(qcur),
		ActualInitStep: float64(hinused),
		LastStep:       float64(hlast),
		CurrentStep:    float64(hcur),
		CurrentTime:    float64(tcur),
	}
	var v C.long
	// The linear-solver counters fail with CVLS_LMEM_NULL when no linear
	// solver is attached; those stay zero.
	if C.CVodeGetNumJacEvals(m.ptr, &v) == 0 {
		st.JacEvals = int64(v)
	}
	if C.CVodeGetNumPrecEvals(m.ptr, &v) == 0 {
		st.PrecEvals = int64(v)
	}
	if C.CVodeGetNumPrecSolves(m.ptr, &v) == 0 {
		st.PrecSolves = int64(v)
	}
	if C.CVodeGetNumGEvals(m.ptr, &v) == 0 {
		st.RootEvals = int64(v)
	}
	if C.CVodeGetNumProjEvals(m.ptr, &v) == 0 {
		st.ProjEvals = int64(v)
	}
	if C.CVodeGetNumNonlinSolvIters(m.ptr, &v) == 0 {
		st.NonlinSolvIters = int64(v)
	}
	if C.CVodeGetNumNonlinSolvConvFails(m.ptr, &v) == 0 {
		st.NonlinConvFails = int64(v)
	}
	return st, CVSuccess
}

func (cvodeLib) Free(mem Mem) {
	m := cvmem(mem)
	if m == nil {
		return
	}
	rootCounts.Delete(m.ud)
	C.cv_free(m.ptr, m.ctx, m.mat, m.ls)
	m.ptr = nil
	m.mat = nil
	m.ls = nil
}

func (m *cvodeMem) releaseLinearSolver() {
	if m.ls != nil {
		C.SUNLinSolFree(m.ls)
		m.ls = nil
	}
	if m.mat != nil {
		C.SUNMatDestroy(m.mat)
		m.mat = nil
	}
}

func cbool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}
