package messenger

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

func (c *Client) CreatePersona(ctx context.Context, persona Persona) (string, error) {
	if strings.TrimSpace(persona.Name) == "" || strings.TrimSpace(persona.ProfilePictureURL) == "" {
		return "", core.BadInput("providers/messenger: persona name and profile picture url are required", nil)
	}
	persona.ID = ""
	var out struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, core.Request{
		Operation: "create_persona",
		Method:    http.MethodPost,
		Path:      "/me/personas",
		Body:      persona,
	}, &out)
	return out.ID, err
}

func (c *Client) GetPersona(ctx context.Context, personaID string) (Persona, error) {
	id, err := requireID("persona id", personaID)
	if err != nil {
		return Persona{}, err
	}
	var out Persona
	err = c.do(ctx, core.Request{
		Operation: "get_persona",
		Method:    http.MethodGet,
		Path:      "/" + id,
	}, &out)
	return out, err
}

type PersonaPage struct {
	Data   []Persona `json:"data"`
	Paging Paging    `json:"paging"`
}

// GetPersonas lists one page of personas. Pass the previous page's
// after cursor to continue.
func (c *Client) GetPersonas(ctx context.Context, after string) (PersonaPage, error) {
	query := map[string]string{}
	if after = strings.TrimSpace(after); after != "" {
		query["after"] = after
	}
	var out PersonaPage
	err := c.do(ctx, core.Request{
		Operation: "get_personas",
		Method:    http.MethodGet,
		Path:      "/me/personas",
		Query:     query,
	}, &out)
	return out, err
}

func (c *Client) DeletePersona(ctx context.Context, personaID string) error {
	id, err := requireID("persona id", personaID)
	if err != nil {
		return err
	}
	return c.do(ctx, core.Request{
		Operation: "delete_persona",
		Method:    http.MethodDelete,
		Path:      "/" + id,
	}, nil)
}
