//go:build cgo && sundials

package native

/*
#include <stdint.h>
#include <stdlib.h>
#include <kinsol/kinsol.h>
#include <nvector/nvector_serial.h>
#include <sunmatrix/sunmatrix_dense.h>
#include <sunlinsol/sunlinsol_dense.h>
#include <sunlinsol/sunlinsol_spgmr.h>

extern int goKinsolSys(double*, double*, long, uintptr_t);
extern int goKinsolJac(double*, double*, long, double*, long, long, double*, double*, uintptr_t);
extern int goKinsolPrecSetup(double*, double*, double*, double*, long, uintptr_t);
extern int goKinsolPrecSolve(double*, double*, double*, double*, double*, long, uintptr_t);
extern void goKinsolErrH(int, char*, char*, char*, uintptr_t);
extern void goKinsolInfoH(char*, char*, char*, uintptr_t);

#define KV_PTR(v) ((v) == NULL ? NULL : N_VGetArrayPointer(v))

static int kin_sys(N_Vector u, N_Vector fval, void *ud) {
	return goKinsolSys(KV_PTR(u), KV_PTR(fval), (long)N_VGetLength(u), (uintptr_t)ud);
}

static int kin_jac(N_Vector u, N_Vector fu, SUNMatrix J, void *ud, N_Vector tmp1, N_Vector tmp2) {
	return goKinsolJac(KV_PTR(u), KV_PTR(fu), (long)N_VGetLength(u),
			   SUNDenseMatrix_Data(J), (long)SUNDenseMatrix_Rows(J),
			   (long)SUNDenseMatrix_Columns(J), KV_PTR(tmp1), KV_PTR(tmp2),
			   (uintptr_t)ud);
}

static int kin_psetup(N_Vector u, N_Vector uscale, N_Vector fval, N_Vector fscale, void *ud) {
	return goKinsolPrecSetup(KV_PTR(u), KV_PTR(uscale), KV_PTR(fval), KV_PTR(fscale),
				 (long)N_VGetLength(u), (uintptr_t)ud);
}

static int kin_psolve(N_Vector u, N_Vector uscale, N_Vector fval, N_Vector fscale,
		      N_Vector v, void *ud) {
	return goKinsolPrecSolve(KV_PTR(u), KV_PTR(uscale), KV_PTR(fval), KV_PTR(fscale),
				 KV_PTR(v), (long)N_VGetLength(u), (uintptr_t)ud);
}

static void kin_errh(int code, const char *module, const char *function, char *msg, void *ud) {
	goKinsolErrH(code, (char *)module, (char *)function, msg, (uintptr_t)ud);
}

static void kin_infoh(const char *module, const char *function, char *msg, void *ud) {
	goKinsolInfoH((char *)module, (char *)function, msg, (uintptr_t)ud);
}

static void *kin_create(SUNContext *ctx) {
	void *mem;
	if (SUNContext_Create(NULL, ctx) != 0) return NULL;
	mem = KINCreate(*ctx);
	if (mem == NULL) SUNContext_Free(ctx);
	return mem;
}

static int kin_init(void *mem, double *tmpl, long n, SUNContext ctx) {
	int flag;
	N_Vector v = N_VMake_Serial(n, tmpl, ctx);
	if (v == NULL) return KIN_MEM_FAIL;
	flag = KINInit(mem, kin_sys, v);
	N_VDestroy(v);
	return flag;
}

static int kin_set_user_data(void *mem, uintptr_t ud) {
	return KINSetUserData(mem, (void *)ud);
}

static int kin_set_errh(void *mem, uintptr_t ud, int on) {
	if (on) return KINSetErrHandlerFn(mem, kin_errh, (void *)ud);
	return KINSetErrHandlerFn(mem, NULL, NULL);
}

static int kin_set_infoh(void *mem, uintptr_t ud, int on) {
	if (on) return KINSetInfoHandlerFn(mem, kin_infoh, (void *)ud);
	return KINSetInfoHandlerFn(mem, NULL, NULL);
}

static int kin_set_dense(void *mem, long n, int userjac, SUNContext ctx,
			 SUNMatrix *A, SUNLinearSolver *LS) {
	int flag;
	N_Vector tmpl = N_VNew_Serial(n, ctx);
	if (tmpl == NULL) return KINLS_MEM_FAIL;
	*A = SUNDenseMatrix(n, n, ctx);
	*LS = (*A == NULL) ? NULL : SUNLinSol_Dense(tmpl, *A, ctx);
	N_VDestroy(tmpl);
	if (*LS == NULL) return KINLS_MEM_FAIL;
	flag = KINSetLinearSolver(mem, *LS, *A);
	if (flag != KINLS_SUCCESS) return flag;
	return KINSetJacFn(mem, userjac ? kin_jac : NULL);
}

static int kin_set_spgmr(void *mem, long n, int psetup, int psolve, SUNContext ctx,
			 SUNLinearSolver *LS) {
	int flag;
	N_Vector tmpl = N_VNew_Serial(n, ctx);
	if (tmpl == NULL) return KINLS_MEM_FAIL;
	*LS = SUNLinSol_SPGMR(tmpl, psolve ? SUN_PREC_RIGHT : SUN_PREC_NONE, 0, ctx);
	N_VDestroy(tmpl);
	if (*LS == NULL) return KINLS_MEM_FAIL;
	flag = KINSetLinearSolver(mem, *LS, NULL);
	if (flag != KINLS_SUCCESS || !psolve) return flag;
	return KINSetPreconditioner(mem, psetup ? kin_psetup : NULL, kin_psolve);
}

static int kin_solve(void *mem, double *u, long n, int strategy,
		     double *uscale, double *fscale, SUNContext ctx) {
	int flag;
	N_Vector vu = N_VMake_Serial(n, u, ctx);
	N_Vector vus = N_VMake_Serial(n, uscale, ctx);
	N_Vector vfs = N_VMake_Serial(n, fscale, ctx);
	if (vu == NULL || vus == NULL || vfs == NULL) {
		flag = KIN_MEM_FAIL;
	} else {
		flag = KINSol(mem, vu, strategy, vus, vfs);
	}
	if (vu != NULL) N_VDestroy(vu);
	if (vus != NULL) N_VDestroy(vus);
	if (vfs != NULL) N_VDestroy(vfs);
	return flag;
}

static void kin_free(void *mem, SUNContext ctx, SUNMatrix A, SUNLinearSolver LS) {
	KINFree(&mem);
	if (LS != NULL) SUNLinSolFree(LS);
	if (A != NULL) SUNMatDestroy(A);
	SUNContext_Free(&ctx);
}
*/
import "C"

import "unsafe"

var (
	_ = [1]struct{}{}[KINSysFuncFail-C.KIN_SYSFUNC_FAIL]
	_ = [1]struct{}{}[C.KIN_SYSFUNC_FAIL-KINSysFuncFail]
	_ = [1]struct{}{}[KINVectorOpErr-C.KIN_VECTOROP_ERR]
	_ = [1]struct{}{}[C.KIN_VECTOROP_ERR-KINVectorOpErr]
)

type kinsolMem struct {
	ptr unsafe.Pointer
	ctx C.SUNContext
	mat C.SUNMatrix
	ls  C.SUNLinearSolver
	ud  uintptr
}

type kinsolLib struct{}

func kinmem(mem Mem) *kinsolMem {
	m, _ := mem.(*kinsolMem)
	if m == nil || m.ptr == nil {
		return nil
	}
	return m
}

func (kinsolLib) Create() Mem {
	m := &kinsolMem{}
	m.ptr = C.kin_create(&m.ctx)
	if m.ptr == nil {
		return nil
	}
	return m
}

func (kinsolLib) Init(mem Mem, tmpl []float64) int {
	m := kinmem(mem)
	if m == nil {
		return KINMemNull
	}
	p, pin := pinned(tmpl)
	defer pin.Unpin()
	return int(C.kin_init(m.ptr, p, C.long(len(tmpl)), m.ctx))
}

func (kinsolLib) SetUserData(mem Mem, ud uintptr) int {
	m := kinmem(mem)
	if m == nil {
		return KINMemNull
	}
	m.ud = ud
	return int(C.kin_set_user_data(m.ptr, C.uintptr_t(ud)))
}

func (kinsolLib) SetErrHandler(mem Mem, on bool) int {
	m := kinmem(mem)
	if m == nil {
		return KINMemNull
	}
	return int(C.kin_set_errh(m.ptr, C.uintptr_t(m.ud), cbool(on)))
}

func (kinsolLib) SetInfoHandler(mem Mem, on bool) int {
	m := kinmem(mem)
	if m == nil {
		return KINMemNull
	}
	return int(C.kin_set_infoh(m.ptr, C.uintptr_t(m.ud), cbool(on)))
}

func (kinsolLib) SetPrintLevel(mem Mem, level int) int {
	m := kinmem(mem)
	if m == nil {
		return KINMemNull
	}
	return int(C.KINSetPrintLevel(m.ptr, C.int(level)))
}

func (kinsolLib) SetMaxIters(mem Mem, n int64) int {
	m := kinmem(mem)
	if m == nil {
		return KINMemNull
	}
	return int(C.KINSetNumMaxIters(m.ptr, C.long(n)))
}

func (kinsolLib) SetFuncNormTol(mem Mem, tol float64) int {
	m := kinmem(mem)
	if m == nil {
		return KINMemNull
	}
	return int(C.KINSetFuncNormTol(m.ptr, C.sunrealtype(tol)))
}

func (kinsolLib) SetScaledStepTol(mem Mem, tol float64) int {
	m := kinmem(mem)
	if m == nil {
		return KINMemNull
	}
	return int(C.KINSetScaledStepTol(m.ptr, C.sunrealtype(tol)))
}

func (kinsolLib) SetDenseLinearSolver(mem Mem, n int, userJac bool) int {
	m := kinmem(mem)
	if m == nil {
		return KINLSMemNull
	}
	m.releaseLinearSolver()
	return int(C.kin_set_dense(m.ptr, C.long(n), cbool(userJac), m.ctx, &m.mat, &m.ls))
}

func (kinsolLib) SetSPGMR(mem Mem, n int, precSetup, precSolve bool) int {
	m := kinmem(mem)
	if m == nil {
		return KINLSMemNull
	}
	m.releaseLinearSolver()
	return int(C.kin_set_spgmr(m.ptr, C.long(n), cbool(precSetup), cbool(precSolve), m.ctx, &m.ls))
}

func (kinsolLib) Solve(mem Mem, u []float64, strategy Strategy, uscale, fscale []float64) int {
	m := kinmem(mem)
	if m == nil {
		return KINMemNull
	}
	if len(uscale) != len(u) || len(fscale) != len(u) {
		return KINIllInput
	}
	pu, pinU := pinned(u)
	defer pinU.Unpin()
	pus, pinUS := pinned(uscale)
	defer pinUS.Unpin()
	pfs, pinFS := pinned(fscale)
	defer pinFS.Unpin()
	return int(C.kin_solve(m.ptr, pu, C.long(len(u)), C.int(strategy), pus, pfs, m.ctx))
}

func (kinsolLib) GetStats(mem Mem) (KinsolStats, int) {
	m := kinmem(mem)
	if m == nil {
		return KinsolStats{}, KINMemNull
	}
	var (
		st KinsolStats
		v  C.long
		r  C.sunrealtype
	)
	if f := C.KINGetNumNonlinSolvIters(m.ptr, &v); f != C.KIN_SUCCESS {
		return KinsolStats{}, int(f)
	}
	st.Iters = int64(v)
	if C.KINGetNumFuncEvals(m.ptr, &v) == 0 {
		st.FuncEvals = int64(v)
	}
	if C.KINGetNumBacktrackOps(m.ptr, &v) == 0 {
		st.BacktrackOps = int64(v)
	}
	if C.KINGetNumBetaCondFails(m.ptr, &v) == 0 {
		st.BetaCondFails = int64(v)
	}
	if C.KINGetNumJacEvals(m.ptr, &v) == 0 {
		st.JacEvals = int64(v)
	}
	if C.KINGetNumPrecEvals(m.ptr, &v) == 0 {
		st.PrecEvals = int64(v)
	}
	if C.KINGetNumPrecSolves(m.ptr, &v) == 0 {
		st.PrecSolves = int64(v)
	}
	if C.KINGetFuncNorm(m.ptr, &r) == 0 {
		st.FuncNorm = float64(r)
	}
	if C.KINGetStepLength(m.ptr, &r) == 0 {
		st.StepLength = float64(r)
	}
	return st, KINSuccess
}

func (kinsolLib) Free(mem Mem) {
	m := kinmem(mem)
	if m == nil {
		return
	}
	C.kin_free(m.ptr, m.ctx, m.mat, m.ls)
	m.ptr = nil
	m.mat = nil
	m.ls = nil
}

func (m *kinsolMem) releaseLinearSolver() {
	if m.ls != nil {
		C.SUNLinSolFree(m.ls)
		m.ls = nil
	}
	if m.mat != nil {
		C.SUNMatDestroy(m.mat)
		m.mat = nil
	}
}
