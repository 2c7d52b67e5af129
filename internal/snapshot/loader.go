// Package snapshot turns a collected directory snapshot document into a typed
// domain.DirectorySnapshot. Only a root that is not a JSON object is fatal;
// everything below the root degrades to defaults.
package snapshot

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"

	"adriskmap/internal/domain"
	"adriskmap/internal/logging"
	"adriskmap/internal/normalize"
)

//go:embed schema.json
var rootSchemaJSON []byte

// ErrMalformedSnapshot is returned when the document cannot be read as a snapshot at all.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	schemaOnce sync.Once
	rootSchema *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		rootSchema, schemaErr = compiler.Compile(rootSchemaJSON)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile snapshot schema: %w", schemaErr)
		}
	})
	return rootSchema, schemaErr
}

// Validate checks that data is a JSON document whose root is an object.
// A leading UTF-8 byte order mark is ignored.
func Validate(data []byte) error {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !json.Valid(data) {
		return fmt.Errorf("%w: document is not valid JSON", ErrMalformedSnapshot)
	}

	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(data)
	if !result.IsValid() {
		return fmt.Errorf("%w: %v", ErrMalformedSnapshot, result.Errors)
	}
	return nil
}

// Parse validates data and decodes every known section.
func Parse(data []byte) (*domain.DirectorySnapshot, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var root map[string]interface{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return Decode(normalize.Record(root)), nil
}

// Decode builds the typed snapshot from an already-parsed root object.
func Decode(root normalize.Record) *domain.DirectorySnapshot {
	if root == nil {
		root = normalize.Record{}
	}
	s := &domain.DirectorySnapshot{
		Domain:    normalize.StringOr(root, "Domain", domain.DefaultDomainName),
		Timestamp: normalize.String(root, "Timestamp"),
	}

	s.Users = decodeUsers(root)
	s.Computers = decodeComputers(root)
	s.ServiceAccounts = decodeServiceAccounts(root)
	s.Groups = decodeGroups(root)
	s.Trusts = decodeTrusts(root)

	s.Statistics = decodeStatistics(root)
	s.KrbtgtInfo = decodeKrbtgtInfo(root)
	s.PasswordPolicy = decodePasswordPolicy(root)
	s.LDAPPolicy = decodeLDAPPolicy(root)
	s.SMBPolicy = decodeSMBPolicy(root)
	s.DomainInfo = decodeDomainInfo(root)
	s.ForestInfo = decodeForestInfo(root)

	s.NTLMEvents = decodeNTLMEvents(root)
	s.FailedLogons = decodeFailedLogons(root)
	s.SuspiciousAccounts = decodeNames(root, "SuspiciousAccounts")
	s.EmptyGroups = decodeNames(root, "EmptyGroups")
	s.LargeGroups = decodeNames(root, "LargeGroups")
	s.CertificateTemplates = decodeCertificateTemplates(root)
	s.CertificateAuthorities = decodeCertificateAuthorities(root)
	s.ComputerSecurityStatus = decodeComputerSecurityStatus(root)

	logging.LogDebug("Snapshot decoded", map[string]interface{}{
		"domain":           s.Domain,
		"users":            len(s.Users),
		"computers":        len(s.Computers),
		"groups":           len(s.Groups),
		"service_accounts": len(s.ServiceAccounts),
	})
	return s
}

// section reads a list section and reports how it was found.
func section(root normalize.Record, field string) []normalize.Record {
	records, skipped, status := normalize.Records(root, field)
	report(field, status, len(records), skipped)
	return records
}

// object reads a single-object section and reports how it was found.
func object(root normalize.Record, field string) (normalize.Record, bool) {
	if _, exists := root[field]; !exists || root[field] == nil {
		report(field, normalize.SectionMissing, 0, 0)
		return nil, false
	}
	rec, ok := normalize.Object(root, field)
	if !ok {
		report(field, normalize.SectionMalformed, 0, 0)
		return nil, false
	}
	report(field, normalize.SectionPresent, 1, 0)
	return rec, true
}

func report(field string, status normalize.SectionStatus, records, skipped int) {
	logging.LogSectionDecode(field, string(status), records, skipped)
	logging.GetMetrics().RecordSection(field, string(status), records, skipped)
}
