// Package catalog lee los datos de referencia (agentes, colectores, clientes, productos y tipos)
// exportados como CSV por el sistema administrativo.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Ahorro-api/internal/domain/entity"
	"github.com/jhoicas/Ahorro-api/internal/domain/ledger"
)

// Archivos esperados dentro del directorio del catálogo. Los ausentes se omiten.
const (
	AgentsFile     = "agents.csv"
	CollectorsFile = "collectors.csv"
	CustomersFile  = "customers.csv"
	ProductsFile   = "products.csv"
	TypesFile      = "types.csv"
)

// Catalog datos de referencia del libro mayor.
type Catalog struct {
	Agents     []entity.Agent
	Collectors []entity.Collector
	Customers  []entity.Customer
	Products   []entity.Product
	Types      []entity.CardType
}

// Sink recibe el catálogo (memory.Store lo implementa).
type Sink interface {
	AddAgent(entity.Agent)
	AddCollector(entity.Collector)
	AddCustomer(entity.Customer)
	AddProduct(entity.Product)
	AddType(entity.CardType)
}

// Apply carga todo el catálogo en s.
func (c *Catalog) Apply(s Sink) {
	for _, a := range c.Agents {
		s.AddAgent(a)
	}
	for _, col := range c.Collectors {
		s.AddCollector(col)
	}
	for _, cu := range c.Customers {
		s.AddCustomer(cu)
	}
	for _, p := range c.Products {
		s.AddProduct(p)
	}
	for _, t := range c.Types {
		s.AddType(t)
	}
}

// Decoder devuelve el decodificador para el charset de los CSV:
// "utf-8" (por defecto), "iso-8859-1" o "windows-1252".
func Decoder(charset string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	}
	return nil, fmt.Errorf("charset no soportado: %q", charset)
}

// Options lectura del catálogo.
type Options struct {
	Charset string // ver Decoder
	Region  string // región por defecto de los teléfonos (ISO 3166, p. ej. "CO")
}

// DefaultRegion región usada si Options.Region está vacío.
const DefaultRegion = "CO"

// Load lee los CSV de dir. Los teléfonos de clientes se normalizan a E.164.
func Load(dir string, opts Options) (*Catalog, error) {
	enc, err := Decoder(opts.Charset)
	if err != nil {
		return nil, err
	}
	region := opts.Region
	if region == "" {
		region = DefaultRegion
	}
	c := &Catalog{}
	steps := []struct {
		file  string
		parse func([]string) error
	}{
		{AgentsFile, func(r []string) error {
			c.Agents = append(c.Agents, entity.Agent{ID: r[0], Name: r[1]})
			return nil
		}},
		{CollectorsFile, func(r []string) error {
			c.Collectors = append(c.Collectors, entity.Collector{ID: r[0], Name: r[1]})
			return nil
		}},
		{CustomersFile, func(r []string) error {
			cu := entity.Customer{ID: r[0], Name: r[1]}
			if len(r) > 2 && r[2] != "" {
				phone, err := NormalizePhone(r[2], region)
				if err != nil {
					return err
				}
				cu.Phone = phone
			}
			c.Customers = append(c.Customers, cu)
			return nil
		}},
		{ProductsFile, func(r []string) error {
			c.Products = append(c.Products, entity.Product{ID: r[0], Name: r[1]})
			return nil
		}},
		{TypesFile, func(r []string) error {
			t, err := parseType(r)
			if err != nil {
				return err
			}
			c.Types = append(c.Types, t)
			return nil
		}},
	}
	for _, s := range steps {
		if err := readFile(filepath.Join(dir, s.file), enc, s.parse); err != nil {
			return nil, fmt.Errorf("%s: %w", s.file, err)
		}
	}
	return c, nil
}

// Read decodifica un CSV con cabecera y llama fn por fila (id y name obligatorios).
func Read(r io.Reader, enc encoding.Encoding, fn func(row []string) error) error {
	cr := csv.NewReader(transform.NewReader(r, enc.NewDecoder()))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("cabecera: %w", err)
	}
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("línea %d: %w", line, err)
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		if len(row) < 2 || row[0] == "" || row[1] == "" {
			return fmt.Errorf("línea %d: id y name son obligatorios", line)
		}
		if err := fn(row); err != nil {
			return fmt.Errorf("línea %d: %w", line, err)
		}
	}
}

func readFile(path string, enc encoding.Encoding, fn func([]string) error) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return Read(f, enc, fn)
}

// parseType: id,name,stake,products con products = "p1:2|p2:1".
func parseType(r []string) (entity.CardType, error) {
	if len(r) < 4 {
		return entity.CardType{}, fmt.Errorf("se esperan id,name,stake,products")
	}
	stake, err := decimal.NewFromString(r[2])
	if err != nil || ledger.ValidateAmount(stake) != nil {
		return entity.CardType{}, fmt.Errorf("stake inválido %q", r[2])
	}
	t := entity.CardType{ID: r[0], Name: r[1], Stake: stake}
	for _, item := range strings.Split(r[3], "|") {
		id, qty, ok := strings.Cut(strings.TrimSpace(item), ":")
		if !ok {
			return entity.CardType{}, fmt.Errorf("producto %q: formato id:cantidad", item)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(qty), 10, 64)
		if err != nil {
			return entity.CardType{}, fmt.Errorf("producto %q: cantidad inválida", item)
		}
		t.ProductsIDs = append(t.ProductsIDs, strings.TrimSpace(id))
		t.ProductsNumbers = append(t.ProductsNumbers, n)
	}
	if err := ledger.ValidateBillOfMaterials(t.ProductsIDs, t.ProductsNumbers); err != nil {
		return entity.CardType{}, fmt.Errorf("tipo %s: %w", t.ID, err)
	}
	return t, nil
}

// NormalizePhone valida el número para la región y lo devuelve en formato E.164.
func NormalizePhone(raw, region string) (string, error) {
	num, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("teléfono %q: %w", raw, err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", fmt.Errorf("teléfono %q no es válido para %s", raw, region)
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}
