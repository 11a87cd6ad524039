/*
Copyright 2024 Arigo Pay Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package arigopay

import (
	"fmt"
	"sort"

	"github.com/arigohub24/arigo-pay/model"
)

// Flow IDs for the built-in payment wizards.
const (
	FlowBankTransfer          = "bank_transfer"
	FlowBillPayment           = "bill_payment"
	FlowInternationalTransfer = "international_transfer"
	FlowSchoolFees            = "school_fees"
)

var nigerianBanks = []string{"GTB", "ACCESS", "ZENITH", "UBA", "FIRST_BANK", "KUDA", "OPAY"}

// billPlans maps a biller plan code to its fixed charge. Selecting a plan is
// what sets the amount; bill payment has no free-form amount entry.
var billPlans = map[string]string{
	"DATA_1GB":        "1000",
	"DATA_5GB":        "3500",
	"DATA_10GB":       "6000",
	"CABLE_COMPACT":   "12500",
	"CABLE_PREMIUM":   "29500",
	"PREPAID_5000":    "5000",
	"PREPAID_10000":   "10000",
	"WATER_QUARTERLY": "7500",
}

func billPlanCodes() []string {
	codes := make([]string, 0, len(billPlans))
	for code := range billPlans {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// billPlanAmountField derives the charge amount from the selected plan. It
// runs before the fee fields so they see the derived amount.
func billPlanAmountField() model.ComputedField {
	return model.ComputedField{
		Name:      "amount",
		DependsOn: []string{"plan"},
		Compute: func(values map[string]interface{}) (interface{}, error) {
			code := model.ValueToString(values["plan"])
			amount, ok := billPlans[code]
			if !ok {
				return nil, fmt.Errorf("unknown plan '%s'", code)
			}
			return amount, nil
		},
	}
}

func domesticFeeFields() []model.ComputedField {
	return []model.ComputedField{
		{
			Name:      "fee",
			DependsOn: []string{"amount"},
			Compute: func(values map[string]interface{}) (interface{}, error) {
				amount, err := model.AmountValue(values, "amount")
				if err != nil {
					return nil, err
				}
				return model.DomesticTransferFee(amount), nil
			},
		},
		{
			Name:      "total",
			DependsOn: []string{"amount"},
			Compute: func(values map[string]interface{}) (interface{}, error) {
				amount, err := model.AmountValue(values, "amount")
				if err != nil {
					return nil, err
				}
				return amount.Add(model.DomesticTransferFee(amount)), nil
			},
		},
	}
}

func internationalFeeFields() []model.ComputedField {
	return []model.ComputedField{
		{
			Name:      "fee",
			DependsOn: []string{"amount"},
			Compute: func(values map[string]interface{}) (interface{}, error) {
				amount, err := model.AmountValue(values, "amount")
				if err != nil {
					return nil, err
				}
				return model.InternationalTransferFee(amount), nil
			},
		},
		{
			Name:      "total",
			DependsOn: []string{"amount"},
			Compute: func(values map[string]interface{}) (interface{}, error) {
				amount, err := model.AmountValue(values, "amount")
				if err != nil {
					return nil, err
				}
				return amount.Add(model.InternationalTransferFee(amount)), nil
			},
		},
	}
}

func bankTransferFlow() *model.WizardDefinition {
	return &model.WizardDefinition{
		FlowID: FlowBankTransfer,
		Name:   "Bank Transfer",
		Steps: []model.Step{
			{
				ID:      "beneficiary",
				Ordinal: 0,
				Fields: []model.FieldSpec{
					{Name: "destination_account", Kind: model.KindText, Required: true, Pattern: &model.FieldPattern{Length: 10, Digits: true}},
					{Name: "destination_account_confirm", Kind: model.KindText, Required: true, ConfirmOf: "destination_account"},
					{Name: "destination_bank", Kind: model.KindEnum, Required: true, Enum: nigerianBanks},
					{Name: "beneficiary_name", Kind: model.KindText, Required: true},
				},
			},
			{
				ID:      "amount",
				Ordinal: 1,
				Fields: []model.FieldSpec{
					{Name: "amount", Kind: model.KindNumber, Required: true, Positive: true},
					{Name: "narration", Kind: model.KindText},
				},
				Computed: domesticFeeFields(),
			},
			{
				ID:      "review",
				Ordinal: 2,
				Fields: []model.FieldSpec{
					{Name: "source_account", Kind: model.KindText, Required: true, Pattern: &model.FieldPattern{Length: 10, Digits: true}},
				},
			},
		},
	}
}

func billPaymentFlow() *model.WizardDefinition {
	return &model.WizardDefinition{
		FlowID: FlowBillPayment,
		Name:   "Bill Payment",
		Steps: []model.Step{
			{
				ID:      "biller",
				Ordinal: 0,
				Fields: []model.FieldSpec{
					{Name: "biller", Kind: model.KindEnum, Required: true, Enum: []string{"ELECTRICITY", "WATER", "INTERNET", "CABLE_TV"}},
					{Name: "customer_reference", Kind: model.KindText, Required: true},
					{Name: "due_date", Kind: model.KindDate},
				},
			},
			{
				ID:      "plan",
				Ordinal: 1,
				Fields: []model.FieldSpec{
					{Name: "plan", Kind: model.KindEnum, Required: true, Enum: billPlanCodes()},
				},
				Computed: append([]model.ComputedField{billPlanAmountField()}, domesticFeeFields()...),
			},
		},
	}
}

func internationalTransferFlow() *model.WizardDefinition {
	return &model.WizardDefinition{
		FlowID: FlowInternationalTransfer,
		Name:   "International Transfer",
		Steps: []model.Step{
			{
				ID:      "beneficiary",
				Ordinal: 0,
				Fields: []model.FieldSpec{
					{Name: "beneficiary_name", Kind: model.KindText, Required: true},
					{Name: "iban", Kind: model.KindText, Required: true},
					{Name: "swift_code", Kind: model.KindText, Required: true},
					{Name: "destination_country", Kind: model.KindText, Required: true},
				},
			},
			{
				ID:      "amount",
				Ordinal: 1,
				Fields: []model.FieldSpec{
					{Name: "amount", Kind: model.KindNumber, Required: true, Positive: true},
					{Name: "currency", Kind: model.KindEnum, Required: true, Enum: []string{"USD", "EUR", "GBP"}},
					{Name: "narration", Kind: model.KindText},
				},
				Computed: internationalFeeFields(),
			},
			{
				ID:      "review",
				Ordinal: 2,
				Fields: []model.FieldSpec{
					{Name: "source_account", Kind: model.KindText, Required: true, Pattern: &model.FieldPattern{Length: 10, Digits: true}},
				},
			},
		},
	}
}

func schoolFeesFlow() *model.WizardDefinition {
	return &model.WizardDefinition{
		FlowID: FlowSchoolFees,
		Name:   "School Fees",
		Steps: []model.Step{
			{
				ID:      "student",
				Ordinal: 0,
				Fields: []model.FieldSpec{
					{Name: "school_name", Kind: model.KindText, Required: true},
					{Name: "student_id", Kind: model.KindText, Required: true},
					{Name: "term", Kind: model.KindEnum, Required: true, Enum: []string{"FIRST", "SECOND", "THIRD"}},
				},
			},
			{
				ID:      "amount",
				Ordinal: 1,
				Fields: []model.FieldSpec{
					{Name: "amount", Kind: model.KindNumber, Required: true, Positive: true},
				},
				Computed: domesticFeeFields(),
			},
		},
	}
}

// BuiltinFlows returns the wizard definitions shipped with the engine.
func BuiltinFlows() []*model.WizardDefinition {
	return []*model.WizardDefinition{
		bankTransferFlow(),
		billPaymentFlow(),
		internationalTransferFlow(),
		schoolFeesFlow(),
	}
}
