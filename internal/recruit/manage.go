package recruit

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	endpointClientCreate      = "client_create"
	endpointClientDelete      = "client_delete"
	endpointRequirementDelete = "requirement_delete"
)

// CreateClient adds a client by name. The returned id is empty when the backend does
// not report one.
func (b *Backend) CreateClient(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("client name is required")
	}

	q := url.Values{}
	q.Set("client_name", name)

	resp, err := b.send(ctx, http.MethodPost, endpointClientCreate, b.Paths.Clients, q, nil, "")
	if err != nil {
		return "", err
	}

	return createdID(resp.body, "client_id", "cl_id", "client.cl_id", "client.client_id", "id"), nil
}

// DeleteClient removes a client together with its contacts.
func (b *Backend) DeleteClient(ctx context.Context, clientID string) error {
	return b.remove(ctx, endpointClientDelete, b.Paths.Clients, clientID)
}

// DeleteRequirement removes one requirement.
func (b *Backend) DeleteRequirement(ctx context.Context, requirementID string) error {
	return b.remove(ctx, endpointRequirementDelete, b.Paths.Requirements, requirementID)
}

func (b *Backend) remove(ctx context.Context, endpoint, collection, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New(endpoint + ": id is required")
	}

	path := strings.TrimRight(collection, "/") + "/" + url.PathEscape(id)
	_, err := b.send(ctx, http.MethodDelete, endpoint, path, nil, nil, "")
	return err
}

func createdID(body []byte, keys ...string) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, key := range keys {
		if v := gjson.GetBytes(body, key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
