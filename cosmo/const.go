package cosmo

// Physical constants in cgs units unless the name says otherwise.
const (
	C         = 29979245800.0  // cm / s
	G         = 6.673e-8       // cm^3 / g / s^2
	KBoltz    = 1.3806488e-16  // erg / K
	HPlanck   = 6.626068e-27   // erg s
	MProton   = 1.67262158e-24 // g
	MElectron = 9.10938188e-28 // g
	MH        = MProton + MElectron
	MHe       = 6.6464764e-24 // g
	SigmaSB   = 5.67051e-5    // erg / cm^2 / s / K^4
	SigmaT    = 6.65e-25      // cm^2

	ErgPerEV = 1.60217646e-12
	KmPerMpc = 3.08568e19
	CmPerMpc = 3.08568e24
	SPerYr   = 365.25 * 24 * 3600
	SPerMyr  = 1e6 * SPerYr
	GPerMSun = 1.98892e33
)
