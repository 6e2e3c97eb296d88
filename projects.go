package payzcore

import (
	"context"
	"net/http"

	"github.com/goliatone/go-payzcore/core"
	"github.com/goliatone/go-payzcore/transport"
)

const projectsPath = "/v1/projects"

// Projects maps the /v1/projects endpoints. They require a client built
// with MasterKey.
type Projects struct {
	transport *transport.Transport
}

func (p *Projects) List(ctx context.Context) ([]core.Project, error) {
	var out projectListEnvelope
	if err := p.transport.Do(ctx, http.MethodGet, projectsPath, nil, &out); err != nil {
		return nil, err
	}
	projects := make([]core.Project, 0, len(out.Projects))
	for _, project := range out.Projects {
		projects = append(projects, project.toCore())
	}
	return projects, nil
}

func (p *Projects) Create(ctx context.Context, req core.CreateProjectRequest) (core.Project, error) {
	body := createProjectBody{
		Name:       req.Name,
		Slug:       req.Slug,
		WebhookURL: req.WebhookURL,
		Metadata:   req.Metadata,
	}
	var out projectEnvelope
	if err := p.transport.Do(ctx, http.MethodPost, projectsPath, body, &out); err != nil {
		return core.Project{}, err
	}
	return out.Project.toCore(), nil
}
