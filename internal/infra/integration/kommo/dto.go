package kommo

type CreateLeadInput struct {
	Name       string
	Email      string
	Phone      string // Ex: "5511999999999"
	Origin     string
	OriginFont string
	Brand      string
}

type ContactResponse struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type embeddedResponse struct {
	Embedded struct {
		Leads    []struct{ ID int `json:"id"` } `json:"leads"`
		Contacts []struct{ ID int `json:"id"` } `json:"contacts"`
	} `json:"_embedded"`
}
