package domain

// Document is the raw input handed to the pipeline by the caller.
// The pipeline only reads FileBytes and never writes to it.
type Document struct {
	FileBytes []byte `json:"-"`
	FileName  string `json:"fileName"`
	MIMEType  string `json:"mimeType"`
}

// BankID tags the issuer of a document.
type BankID string

const (
	BankUnknown     BankID = "unknown"
	BankNubank      BankID = "nubank"
	BankInter       BankID = "inter"
	BankC6          BankID = "c6"
	BankPicPay      BankID = "picpay"
	BankMercadoPago BankID = "mercadopago"
	BankItau        BankID = "itau"
	BankBradesco    BankID = "bradesco"
	BankSantander   BankID = "santander"
	BankBB          BankID = "bb"
	BankCaixa       BankID = "caixa"
)

// DetectedBank is the issuer classification of one document.
type DetectedBank struct {
	ID          BankID  `json:"bankId"`
	DisplayName string  `json:"displayName"`
	Confidence  float64 `json:"confidence"`
}

// UnknownBank is returned whenever no issuer signal is found.
func UnknownBank() DetectedBank {
	return DetectedBank{ID: BankUnknown, DisplayName: "Desconhecido", Confidence: 0}
}

// Known reports whether the bank was identified.
func (b DetectedBank) Known() bool {
	return b.ID != "" && b.ID != BankUnknown
}
