package model

import "time"

// CertificateTerms describes an outperformance bonus certificate on an index.
type CertificateTerms struct {
	InitialFixing float64   // index level at issuance
	Barrier       float64   // bonus barrier on the path minimum
	Participation float64   // upside participation rate
	Denomination  float64   // nominal amount of the note
	Maturity      time.Time // final fixing date
}
