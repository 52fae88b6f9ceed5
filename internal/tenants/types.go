package tenants

import (
	"encoding/json"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Tenant is a customer company with its ERP settings and feature flags.
type Tenant struct {
	ID           int64  `dynamodbav:"id" json:"id_tenant"` // PK
	Nome         string `dynamodbav:"nome,omitempty" json:"nome,omitempty"`
	TotvsHost    string `dynamodbav:"totvs_host,omitempty" json:"-"`
	TotvsPort    Port   `dynamodbav:"totvs_port,omitempty" json:"-"`
	TotvsLogin   string `dynamodbav:"totvs_login,omitempty" json:"-"` // ERP password
	TotvsUsuario string `dynamodbav:"totvs_usuario,omitempty" json:"-"`

	ValidarEtapa    Flag `dynamodbav:"wta_validar_etapa" json:"wta_validar_etapa"`
	ValidarEstoque  Flag `dynamodbav:"wta_validar_estoque" json:"wta_validar_estoque"`
	ReprocessarHora Flag `dynamodbav:"wta_reprocessar_hora" json:"wta_reprocessar_hora"`
}

// FlagsUpdate carries the flags to change; nil fields are left untouched.
type FlagsUpdate struct {
	ValidarEtapa    *bool `json:"wta_validar_etapa"`
	ValidarEstoque  *bool `json:"wta_validar_estoque"`
	ReprocessarHora *bool `json:"wta_reprocessar_hora"`
}

// Empty reports whether no flag was supplied.
func (u FlagsUpdate) Empty() bool {
	return u.ValidarEtapa == nil && u.ValidarEstoque == nil && u.ReprocessarHora == nil
}

// Flag is a boolean stored as 0/1.
type Flag bool

func (f *Flag) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		*f = v.Value == "1"
	case *types.AttributeValueMemberS:
		*f = v.Value == "1" || v.Value == "true"
	case *types.AttributeValueMemberBOOL:
		*f = Flag(v.Value)
	default:
		*f = false
	}
	return nil
}

func (f Flag) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return flagAttr(bool(f)), nil
}

func (f Flag) MarshalJSON() ([]byte, error) { return json.Marshal(bool(f)) }

func flagAttr(b bool) *types.AttributeValueMemberN {
	if b {
		return &types.AttributeValueMemberN{Value: "1"}
	}
	return &types.AttributeValueMemberN{Value: "0"}
}

// Port is stored either as a string or a number.
type Port string

func (p *Port) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		*p = Port(v.Value)
	case *types.AttributeValueMemberN:
		if n, err := strconv.ParseFloat(v.Value, 64); err == nil {
			*p = Port(strconv.FormatInt(int64(n), 10))
		} else {
			*p = Port(v.Value)
		}
	default:
		*p = ""
	}
	return nil
}
