package addresslookup

// Address is the resolved street-level address for a postal code.
type Address struct {
	PostalCode   string `json:"cep"`
	Street       string `json:"logradouro"`
	Complement   string `json:"complemento"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
}
