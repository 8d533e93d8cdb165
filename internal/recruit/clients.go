package recruit

import "context"

const endpointClients = "clients"

// Client is an agency customer that owns requirements.
type Client struct {
	ID   string `json:"cl_id" validate:"required"`
	Name string `json:"cl_name"`
}

type Clients []Client

var clientAliases = map[string]string{
	"client_id":   "cl_id",
	"client_name": "cl_name",
	"id":          "cl_id",
	"name":        "cl_name",
}

// Clients returns every client known to the backend.
func (b *Backend) Clients(ctx context.Context) (Clients, error) {
	items, err := b.getItems(ctx, endpointClients, b.Paths.Clients, nil)
	if err != nil {
		return nil, err
	}

	return decodeList[Client](b, endpointClients, items, clientAliases)
}

func (c Clients) FindByID(id string) (Client, bool) {
	for _, client := range c {
		if client.ID == id {
			return client, true
		}
	}
	return Client{}, false
}

func (c Clients) Names() []string {
	names := make([]string, 0, len(c))
	for _, client := range c {
		names = append(names, client.Name)
	}
	return names
}
