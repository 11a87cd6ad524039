package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/lib/pq"

	"github.com/arigohub24/arigo-pay/internal/apierror"
	"github.com/arigohub24/arigo-pay/model"
)

// RecordTemplate appends a saved template. Templates are never updated or
// deleted, so listings stay stable for pickers.
func (d Datasource) RecordTemplate(ctx context.Context, template *model.SavedTemplate) (*model.SavedTemplate, error) {
	ctx, span := otel.Tracer("template.database").Start(ctx, "Saving template to db")
	defer span.End()

	valuesJSON, err := json.Marshal(template.Values)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal template values", err)
	}

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO arigopay.saved_templates(template_id,owner_id,kind,name,field_values,created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		template.TemplateID, template.OwnerID, template.Kind, template.Name, valuesJSON, template.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Template with ID '%s' already exists", template.TemplateID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record template", err)
	}

	return template, nil
}

func (d Datasource) GetTemplate(ctx context.Context, id string) (*model.SavedTemplate, error) {
	ctx, span := otel.Tracer("template.database").Start(ctx, "Getting template from db")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx, `
		SELECT id, template_id, owner_id, kind, name, field_values, created_at
		FROM arigopay.saved_templates
		WHERE template_id = $1
	`, id)

	template := &model.SavedTemplate{}
	var valuesJSON []byte
	err := row.Scan(&template.ID, &template.TemplateID, &template.OwnerID, &template.Kind, &template.Name, &valuesJSON, &template.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Template with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve template", err)
	}

	if err := json.Unmarshal(valuesJSON, &template.Values); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal template values", err)
	}

	return template, nil
}

// GetAllTemplates lists an owner's templates in insertion order. Kind is
// optional; an empty kind returns every template for the owner.
func (d Datasource) GetAllTemplates(ctx context.Context, ownerID, kind string, limit, offset int) ([]*model.SavedTemplate, error) {
	ctx, span := otel.Tracer("template.database").Start(ctx, "Getting templates from db")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, template_id, owner_id, kind, name, field_values, created_at
		FROM arigopay.saved_templates
		WHERE owner_id = $1 AND ($2 = '' OR kind = $2)
		ORDER BY created_at ASC, id ASC
		LIMIT $3 OFFSET $4
	`, ownerID, kind, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve templates", err)
	}
	defer rows.Close()

	var templates []*model.SavedTemplate
	for rows.Next() {
		template := &model.SavedTemplate{}
		var valuesJSON []byte
		err := rows.Scan(&template.ID, &template.TemplateID, &template.OwnerID, &template.Kind, &template.Name, &valuesJSON, &template.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan template", err)
		}
		if err := json.Unmarshal(valuesJSON, &template.Values); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal template values", err)
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to iterate templates", err)
	}

	return templates, nil
}
