package normalize

import (
	"strconv"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/jcmturner/gokrb5/v8/iana/etypeID"
)

// GroupName reduces a distinguished name such as
// "CN=Domain Admins,CN=Users,DC=corp,DC=local" to its leading CN value.
// Plain names are returned trimmed.
func GroupName(entry string) string {
	entry = strings.TrimSpace(entry)
	if !strings.Contains(entry, "=") {
		return entry
	}
	dn, err := ldap.ParseDN(entry)
	if err != nil || len(dn.RDNs) == 0 || len(dn.RDNs[0].Attributes) == 0 {
		return entry
	}
	first := dn.RDNs[0].Attributes[0]
	if !strings.EqualFold(first.Type, "CN") {
		return entry
	}
	return first.Value
}

// Canonical encryption type labels
const (
	EncDES    = "DES"
	EncRC4    = "RC4"
	EncAES128 = "AES128"
	EncAES256 = "AES256"
)

// msDS-SupportedEncryptionTypes bits
var supportedEncryptionBits = []struct {
	bit   int
	etype int32
}{
	{0x01, etypeID.DES_CBC_CRC},
	{0x02, etypeID.DES_CBC_MD5},
	{0x04, etypeID.RC4_HMAC},
	{0x08, etypeID.AES128_CTS_HMAC_SHA1_96},
	{0x10, etypeID.AES256_CTS_HMAC_SHA1_96},
}

// EncryptionTypes returns the canonical encryption type labels stored under field.
// Accepted shapes: a list of names or Kerberos etype ids, a comma-separated string,
// or a bare msDS-SupportedEncryptionTypes bitmask.
func EncryptionTypes(record Record, field string) []string {
	var labels []string
	switch v := record[field].(type) {
	case float64:
		labels = fromBitmask(int(v))
	case string:
		for _, part := range strings.Split(v, ",") {
			labels = append(labels, encryptionLabel(part))
		}
	case []string:
		for _, s := range v {
			labels = append(labels, encryptionLabel(s))
		}
	case []interface{}:
		for _, item := range v {
			switch e := item.(type) {
			case string:
				labels = append(labels, encryptionLabel(e))
			case float64:
				labels = append(labels, etypeLabel(int32(e)))
			}
		}
	}
	return dedupe(labels)
}

func fromBitmask(mask int) []string {
	labels := make([]string, 0, len(supportedEncryptionBits))
	for _, b := range supportedEncryptionBits {
		if mask&b.bit != 0 {
			labels = append(labels, etypeLabel(b.etype))
		}
	}
	return labels
}

func etypeLabel(id int32) string {
	switch id {
	case etypeID.DES_CBC_CRC, etypeID.DES_CBC_MD4, etypeID.DES_CBC_MD5:
		return EncDES
	case etypeID.RC4_HMAC, etypeID.RC4_HMAC_EXP:
		return EncRC4
	case etypeID.AES128_CTS_HMAC_SHA1_96, etypeID.AES128_CTS_HMAC_SHA256_128:
		return EncAES128
	case etypeID.AES256_CTS_HMAC_SHA1_96, etypeID.AES256_CTS_HMAC_SHA384_192:
		return EncAES256
	default:
		return strconv.Itoa(int(id))
	}
}

func encryptionLabel(name string) string {
	name = strings.TrimSpace(name)
	upper := strings.ToUpper(name)
	switch {
	case upper == "":
		return ""
	case upper == EncDES || strings.HasPrefix(upper, "DES-CBC") || strings.HasPrefix(upper, "DES_CBC"):
		return EncDES
	case strings.HasPrefix(upper, EncRC4) || upper == "ARCFOUR-HMAC":
		return EncRC4
	case strings.HasPrefix(upper, EncAES128):
		return EncAES128
	case strings.HasPrefix(upper, EncAES256):
		return EncAES256
	default:
		return name
	}
}

func dedupe(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	result := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		result = append(result, l)
	}
	return result
}
