package csvproc

// Request carries one CSV processing job.
type Request struct {
	PhoneNumber string `json:"phoneNumber"`
	DocumentURL string `json:"documentUrl"`
	MessageID   string `json:"messageId"`
}

// Result is the outcome of a CSV processing job.
type Result struct {
	PhoneNumber  string    `json:"phoneNumber"`
	Listings     []Listing `json:"listings,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	Success      bool      `json:"success"`
}

// Listing is one property row of the Caixa real-estate CSV. Fields follow
// the document's positional column order.
type Listing struct {
	Number         string `json:"num_imovel"`
	State          string `json:"uf"`
	City           string `json:"cidade"`
	District       string `json:"bairro"`
	Address        string `json:"endereco"`
	Price          string `json:"preco"`
	AppraisalValue string `json:"valor_avaliacao"`
	Discount       string `json:"desconto"`
	Description    string `json:"descricao"`
	SaleMode       string `json:"modalidade_venda"`
	AccessLink     string `json:"link_acesso"`
}

// Filter selects which listings are reported back to the sender.
type Filter struct {
	City                string   // exact city match
	DescriptionContains string   // substring the description must contain
	SaleModes           []string // substrings matched against the sale mode
}

// DefaultFilter returns the filter applied when none is configured.
func DefaultFilter() Filter {
	return Filter{
		City:                "MARINGA",
		DescriptionContains: "Casa",
		SaleModes:           []string{"Leilão", "Licitação"},
	}
}
