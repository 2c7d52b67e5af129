package mocks

import (
	"encoding/json"
)

// =============================================================================
// Snapshot document builders
// =============================================================================

// UserRecordBuilder builds one raw Users entry the way a collector emits it.
type UserRecordBuilder struct {
	record map[string]interface{}
}

// NewUserRecord starts an enabled user with no risk factors.
func NewUserRecord(sam string) *UserRecordBuilder {
	return &UserRecordBuilder{record: map[string]interface{}{
		"SamAccountName":          sam,
		"Enabled":                 true,
		"MemberOf":                []interface{}{},
		"DaysSinceLastLogon":      1.0,
		"DaysSincePasswordChange": 1.0,
	}}
}

// MemberOf sets the membership list.
func (b *UserRecordBuilder) MemberOf(groups ...string) *UserRecordBuilder {
	b.record["MemberOf"] = stringsToAny(groups)
	return b
}

// SPNs sets the service principal names.
func (b *UserRecordBuilder) SPNs(spns ...string) *UserRecordBuilder {
	b.record["SPNs"] = stringsToAny(spns)
	return b
}

// Unconstrained sets TrustedForDelegation.
func (b *UserRecordBuilder) Unconstrained() *UserRecordBuilder {
	b.record["TrustedForDelegation"] = true
	return b
}

// Constrained sets TrustedToAuthForDelegation.
func (b *UserRecordBuilder) Constrained() *UserRecordBuilder {
	b.record["TrustedToAuthForDelegation"] = true
	return b
}

// EncryptionTypes sets the raw encryption types value (names, ids or a bitmask).
func (b *UserRecordBuilder) EncryptionTypes(value interface{}) *UserRecordBuilder {
	b.record["EncryptionTypes"] = value
	return b
}

// NoPreAuth sets DoesNotRequirePreAuth.
func (b *UserRecordBuilder) NoPreAuth() *UserRecordBuilder {
	b.record["DoesNotRequirePreAuth"] = true
	return b
}

// Description sets the description.
func (b *UserRecordBuilder) Description(desc string) *UserRecordBuilder {
	b.record["Description"] = desc
	return b
}

// Inactive sets the days since last logon.
func (b *UserRecordBuilder) Inactive(days float64) *UserRecordBuilder {
	b.record["DaysSinceLastLogon"] = days
	return b
}

// PasswordAge sets the days since the password changed.
func (b *UserRecordBuilder) PasswordAge(days float64) *UserRecordBuilder {
	b.record["DaysSincePasswordChange"] = days
	return b
}

// Set overrides any raw field, including with wrongly-typed values.
func (b *UserRecordBuilder) Set(field string, value interface{}) *UserRecordBuilder {
	b.record[field] = value
	return b
}

// Build returns the raw record.
func (b *UserRecordBuilder) Build() map[string]interface{} {
	return b.record
}

// ComputerRecordBuilder builds one raw Computers entry.
type ComputerRecordBuilder struct {
	record map[string]interface{}
}

// NewComputerRecord starts an enabled member server.
func NewComputerRecord(sam string) *ComputerRecordBuilder {
	return &ComputerRecordBuilder{record: map[string]interface{}{
		"SamAccountName":     sam,
		"Enabled":            true,
		"IsDomainController": false,
	}}
}

// DomainController marks the computer as a DC.
func (b *ComputerRecordBuilder) DomainController() *ComputerRecordBuilder {
	b.record["IsDomainController"] = true
	return b
}

// Unconstrained sets TrustedForDelegation.
func (b *ComputerRecordBuilder) Unconstrained() *ComputerRecordBuilder {
	b.record["TrustedForDelegation"] = true
	return b
}

// DelegatesTo sets the constrained delegation target list.
func (b *ComputerRecordBuilder) DelegatesTo(targets ...string) *ComputerRecordBuilder {
	b.record["ConstrainedDelegation"] = stringsToAny(targets)
	return b
}

// Build returns the raw record.
func (b *ComputerRecordBuilder) Build() map[string]interface{} {
	return b.record
}

// SnapshotBuilder assembles a whole snapshot document.
type SnapshotBuilder struct {
	doc map[string]interface{}
}

// NewSnapshot starts a document for domain. An empty domain leaves the field out.
func NewSnapshot(domain string) *SnapshotBuilder {
	doc := map[string]interface{}{}
	if domain != "" {
		doc["Domain"] = domain
	}
	return &SnapshotBuilder{doc: doc}
}

// WithUsers appends user records.
func (b *SnapshotBuilder) WithUsers(users ...*UserRecordBuilder) *SnapshotBuilder {
	list, _ := b.doc["Users"].([]interface{})
	for _, u := range users {
		list = append(list, u.Build())
	}
	b.doc["Users"] = list
	return b
}

// WithComputers appends computer records.
func (b *SnapshotBuilder) WithComputers(computers ...*ComputerRecordBuilder) *SnapshotBuilder {
	list, _ := b.doc["Computers"].([]interface{})
	for _, c := range computers {
		list = append(list, c.Build())
	}
	b.doc["Computers"] = list
	return b
}

// WithGroup appends a SecurityGroups entry whose members are given as objects.
func (b *SnapshotBuilder) WithGroup(name string, members ...string) *SnapshotBuilder {
	list, _ := b.doc["SecurityGroups"].([]interface{})
	memberList := make([]interface{}, 0, len(members))
	for _, m := range members {
		memberList = append(memberList, map[string]interface{}{"SamAccountName": m})
	}
	list = append(list, map[string]interface{}{
		"Name":       name,
		"GroupScope": "Global",
		"Members":    memberList,
	})
	b.doc["SecurityGroups"] = list
	return b
}

// WithNTLMEventCount sets Statistics.NTLMEventCount.
func (b *SnapshotBuilder) WithNTLMEventCount(n int) *SnapshotBuilder {
	stats, _ := b.doc["Statistics"].(map[string]interface{})
	if stats == nil {
		stats = map[string]interface{}{}
	}
	stats["NTLMEventCount"] = n
	b.doc["Statistics"] = stats
	return b
}

// WithKrbtgtAge sets KrbtgtInfo.DaysSincePasswordChange.
func (b *SnapshotBuilder) WithKrbtgtAge(days int) *SnapshotBuilder {
	b.doc["KrbtgtInfo"] = map[string]interface{}{"DaysSincePasswordChange": days}
	return b
}

// WithSection sets any raw top-level section.
func (b *SnapshotBuilder) WithSection(name string, value interface{}) *SnapshotBuilder {
	b.doc[name] = value
	return b
}

// Build returns the raw document.
func (b *SnapshotBuilder) Build() map[string]interface{} {
	return b.doc
}

// JSON returns the encoded document. It panics on values encoding/json rejects.
func (b *SnapshotBuilder) JSON() []byte {
	data, err := json.Marshal(b.doc)
	if err != nil {
		panic("mocks: snapshot document is not encodable: " + err.Error())
	}
	return data
}

func stringsToAny(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// =============================================================================
// Pre-built scenarios
// =============================================================================

// TestSnapshots provides common snapshot documents
var TestSnapshots = struct {
	Empty          func() *SnapshotBuilder
	DelegatingHost func() *SnapshotBuilder
	ProtectedAdmin func() *SnapshotBuilder
	Mixed          func() *SnapshotBuilder
}{
	Empty: func() *SnapshotBuilder {
		return NewSnapshot("")
	},
	DelegatingHost: func() *SnapshotBuilder {
		return NewSnapshot("corp.local").
			WithComputers(NewComputerRecord("WEB01$").Unconstrained())
	},
	ProtectedAdmin: func() *SnapshotBuilder {
		return NewSnapshot("corp.local").
			WithUsers(NewUserRecord("alice").MemberOf("Domain Admins", "Protected Users"))
	},
	Mixed: func() *SnapshotBuilder {
		return NewSnapshot("corp.local").
			WithUsers(
				NewUserRecord("Administrator").MemberOf("CN=Domain Admins,CN=Users,DC=corp,DC=local"),
				NewUserRecord("svc_web").SPNs("HTTP/web01.corp.local").Unconstrained().EncryptionTypes(4),
				NewUserRecord("bob").MemberOf("Domain Admins").NoPreAuth(),
				NewUserRecord("old").Inactive(200).PasswordAge(400),
			).
			WithComputers(
				NewComputerRecord("DC01$").DomainController().Unconstrained(),
				NewComputerRecord("FILE01$").Unconstrained(),
			).
			WithGroup("Domain Admins", "Administrator", "bob").
			WithNTLMEventCount(7).
			WithKrbtgtAge(400)
	},
}
