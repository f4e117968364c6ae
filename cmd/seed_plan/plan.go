package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encodings admitidos por -encoding.
const (
	EncodingAuto   = "auto"
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "iso-8859-1"
)

// accountNamespace espacio de nombres de los ids: el mismo código genera siempre el mismo id.
var accountNamespace = uuid.MustParse("6f1c2b9e-3a4d-5e6f-8a7b-9c0d1e2f3a4b")

type planAccount struct {
	ID       string
	Code     string
	Name     string
	IsHeader bool
}

// decodeInput devuelve el contenido en UTF-8. En modo auto, lo que no es UTF-8 válido se
// interpreta como ISO-8859-1 (exportaciones de sistemas contables viejos).
func decodeInput(raw []byte, encoding string) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	switch strings.ToLower(encoding) {
	case EncodingUTF8, "utf8":
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("el archivo no es UTF-8 válido")
		}
		return raw, nil
	case EncodingLatin1, "latin1", "latin-1":
		return latin1ToUTF8(raw)
	case EncodingAuto, "":
		if utf8.Valid(raw) {
			return raw, nil
		}
		return latin1ToUTF8(raw)
	}
	return nil, fmt.Errorf("encoding desconocido: %s", encoding)
}

func latin1ToUTF8(raw []byte) ([]byte, error) {
	out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("decodificar ISO-8859-1: %w", err)
	}
	return out, nil
}

// detectDelimiter ';' si la primera línea tiene más ';' que ','.
func detectDelimiter(content []byte) rune {
	first, _, _ := bufio.NewReader(bytes.NewReader(content)).ReadLine()
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}

// parsePlan lee el CSV "código, nombre[, imputable]". La primera fila se descarta si es
// encabezado. Sin columna imputable, una cuenta es título si otra cuenta cuelga de su código.
func parsePlan(r io.Reader, delimiter rune) ([]planAccount, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var accounts []planAccount
	explicit := map[string]bool{}
	seen := map[string]bool{}
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if len(rec) < 2 {
			continue
		}
		code := strings.TrimSpace(rec[0])
		name := strings.TrimSpace(rec[1])
		if line == 1 && isHeaderRow(code) {
			continue
		}
		if code == "" || name == "" {
			continue
		}
		if seen[code] {
			return nil, fmt.Errorf("línea %d: código duplicado %s", line, code)
		}
		seen[code] = true
		acc := planAccount{
			ID:   uuid.NewSHA1(accountNamespace, []byte(code)).String(),
			Code: code,
			Name: name,
		}
		if len(rec) > 2 {
			if v, ok := parseImputable(rec[2]); ok {
				acc.IsHeader = !v
				explicit[code] = true
			}
		}
		accounts = append(accounts, acc)
	}

	for i := range accounts {
		if explicit[accounts[i].Code] {
			continue
		}
		prefix := accounts[i].Code + "."
		for _, other := range accounts {
			if strings.HasPrefix(other.Code, prefix) {
				accounts[i].IsHeader = true
				break
			}
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func isHeaderRow(first string) bool {
	switch strings.ToLower(first) {
	case "codigo", "código", "cuenta", "code", "nro", "numero", "número":
		return true
	}
	return false
}

func parseImputable(v string) (bool, bool) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "S", "SI", "SÍ", "1", "TRUE", "X":
		return true, true
	case "N", "NO", "0", "FALSE", "":
		return false, strings.TrimSpace(v) != ""
	}
	return false, false
}

// writeSeed escribe el script up (idempotente por código) y el down.
func writeSeed(up, down io.Writer, accounts []planAccount, source string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "-- Plan de cuentas generado desde %s (%d cuentas)\n\n", source, len(accounts))
	if len(accounts) > 0 {
		b.WriteString("INSERT INTO accounts (id, code, name, is_header) VALUES\n")
		for i, a := range accounts {
			sep := ","
			if i == len(accounts)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "  ('%s', '%s', '%s', %t)%s\n", a.ID, escapeSQL(a.Code), escapeSQL(a.Name), a.IsHeader, sep)
		}
		b.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, is_header = EXCLUDED.is_header;\n")
	}
	if _, err := io.WriteString(up, b.String()); err != nil {
		return err
	}

	b.Reset()
	if len(accounts) > 0 {
		codes := make([]string, 0, len(accounts))
		for _, a := range accounts {
			codes = append(codes, "'"+escapeSQL(a.Code)+"'")
		}
		in := strings.Join(codes, ", ")
		fmt.Fprintf(&b, "DELETE FROM account_mappings WHERE account_id IN (SELECT id FROM accounts WHERE code IN (%s));\n", in)
		fmt.Fprintf(&b, "DELETE FROM accounts WHERE code IN (%s);\n", in)
	}
	_, err := io.WriteString(down, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
