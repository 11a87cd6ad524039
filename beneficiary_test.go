package arigopay

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arigohub24/arigo-pay/model"
)

func TestSaveTemplate(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	values := map[string]interface{}{
		"destination_account": "1234567890",
		"destination_bank":    "GTB",
		"beneficiary_name":    gofakeit.Name(),
	}
	datasource.On("RecordTemplate", mock.Anything, mock.MatchedBy(func(tpl *model.SavedTemplate) bool {
		return tpl.Kind == TemplateKindBeneficiary && tpl.Name == "Landlord" && tpl.TemplateID != ""
	})).Return(&model.SavedTemplate{TemplateID: "tpl_001"}, nil)

	saved, err := engine.SaveTemplate(context.Background(), "usr_001", TemplateKindBeneficiary, "Landlord", values)
	assert.NoError(t, err)
	assert.Equal(t, "tpl_001", saved.TemplateID)
	datasource.AssertExpectations(t)
}

func TestSaveTemplate_SnapshotsValues(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	values := map[string]interface{}{"destination_account": "1234567890"}
	var recorded *model.SavedTemplate
	datasource.On("RecordTemplate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).(*model.SavedTemplate)
		}).
		Return(&model.SavedTemplate{}, nil)

	_, err := engine.SaveTemplate(context.Background(), "usr_001", TemplateKindBeneficiary, "Landlord", values)
	require.NoError(t, err)

	values["destination_account"] = "0000000000"
	assert.Equal(t, "1234567890", recorded.Values["destination_account"])
}

func TestSaveTemplate_InvalidKind(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	_, err := engine.SaveTemplate(context.Background(), "usr_001", "bogus", "Landlord", nil)
	assert.Error(t, err)
}

func TestSaveTemplate_MissingName(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	_, err := engine.SaveTemplate(context.Background(), "usr_001", TemplateKindBeneficiary, "", nil)
	assert.Error(t, err)
}

func TestListTemplates_DefaultsLimit(t *testing.T) {
	engine, datasource, _, _ := newTestEngine(t)

	datasource.On("GetAllTemplates", mock.Anything, "usr_001", TemplateKindBeneficiary, 50, 0).
		Return([]*model.SavedTemplate{{TemplateID: "tpl_001"}}, nil)

	templates, err := engine.ListTemplates(context.Background(), "usr_001", TemplateKindBeneficiary, 0, 0)
	assert.NoError(t, err)
	assert.Len(t, templates, 1)
	datasource.AssertExpectations(t)
}

func TestPrefillFromTemplate_DropsUnknownFields(t *testing.T) {
	definition := bankTransferFlow()
	template := &model.SavedTemplate{
		Values: map[string]interface{}{
			"destination_account": "1234567890",
			"iban":                "DE89370400440532013000",
		},
	}

	values := PrefillFromTemplate(definition, template)
	assert.Equal(t, "1234567890", values["destination_account"])
	_, ok := values["iban"]
	assert.False(t, ok)
}
