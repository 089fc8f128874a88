// Package sobjects holds client-side representations of Salesforce objects.
package sobjects

import (
	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
)

// CaseObjectName is the API name of the Case sObject.
const CaseObjectName = "Case"

// CaseBaseQuery selects every field mapped by Case.
const CaseBaseQuery = "SELECT Id, Subject, Status FROM Case"

// Case is a customer support case.
type Case struct {
	sfrest.BaseRecord
	Subject string `json:"Subject,omitempty"`
	Status  string `json:"Status,omitempty"`
}

// NewCase returns an unsaved case.
func NewCase(subject, status string) *Case {
	return &Case{Subject: subject, Status: status}
}

func (c *Case) ObjectName() string { return CaseObjectName }

func (c *Case) ToWire() (map[string]interface{}, error) {
	return sfrest.EncodeWire(c)
}

func (c *Case) FromWire(m map[string]interface{}) error {
	return sfrest.DecodeWire(m, c)
}

var _ sfrest.Record = (*Case)(nil)
