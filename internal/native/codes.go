package native

// CVODE return flags (cvode.h, SUNDIALS 6.x).
const (
	CVSuccess          = 0
	CVTstopReturn      = 1
	CVRootReturn       = 2
	CVWarning          = 99
	CVTooMuchWork      = -1
	CVTooMuchAcc       = -2
	CVErrFailure       = -3
	CVConvFailure      = -4
	CVLinitFail        = -5
	CVLsetupFail       = -6
	CVLsolveFail       = -7
	CVRhsFuncFail      = -8
	CVFirstRhsFuncErr  = -9
	CVReptdRhsFuncErr  = -10
	CVUnrecRhsFuncErr  = -11
	CVRtFuncFail       = -12
	CVNLSInitFail      = -13
	CVNLSSetupFail     = -14
	CVConstrFail       = -15
	CVNLSFail          = -16
	CVMemFail          = -20
	CVMemNull          = -21
	CVIllInput         = -22
	CVNoMalloc         = -23
	CVBadK             = -24
	CVBadT             = -25
	CVBadDky           = -26
	CVTooClose         = -27
	CVVectorOpErr      = -28
	CVProjMemNull      = -29
	CVProjFuncFail     = -30
	CVReptdProjFuncErr = -31
)

// CVLS return flags (cvode_ls.h).
const (
	CVLSSuccess        = 0
	CVLSMemNull        = -1
	CVLSLmemNull       = -2
	CVLSIllInput       = -3
	CVLSMemFail        = -4
	CVLSPmemNull       = -5
	CVLSJacFuncUnrecvr = -6
	CVLSJacFuncRecvr   = -7
	CVLSSunMatFail     = -8
	CVLSSunLSFail      = -9
)

// KINSOL return flags (kinsol.h).
const (
	KINSuccess           = 0
	KINInitialGuessOK    = 1
	KINStepLTStpTol      = 2
	KINWarning           = 99
	KINMemNull           = -1
	KINIllInput          = -2
	KINNoMalloc          = -3
	KINMemFail           = -4
	KINLineSearchNonConv = -5
	KINMaxIterReached    = -6
	KINMxNewt5xExceeded  = -7
	KINLineSearchBCFail  = -8
	KINLinSolvNoRecovery = -9
	KINLinitFail         = -10
	KINLsetupFail        = -11
	KINLsolveFail        = -12
	KINSysFuncFail       = -13
	KINFirstSysFuncErr   = -14
	KINReptdSysFuncErr   = -15
	KINVectorOpErr       = -16
)

// KINLS return flags (kinsol_ls.h).
const (
	KINLSSuccess    = 0
	KINLSMemNull    = -1
	KINLSLmemNull   = -2
	KINLSIllInput   = -3
	KINLSMemFail    = -4
	KINLSPmemNull   = -5
	KINLSJacFuncErr = -6
	KINLSSunMatFail = -7
	KINLSSunLSFail  = -8
)
