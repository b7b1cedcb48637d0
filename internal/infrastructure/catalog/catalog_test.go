package catalog_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ahorro-api/internal/domain/repository"
	"github.com/jhoicas/Ahorro-api/internal/infrastructure/catalog"
	"github.com/jhoicas/Ahorro-api/internal/infrastructure/memory"
)

func writeFile(t *testing.T, dir, name string, content []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0o600))
}

func TestLoad_Latin1(t *testing.T) {
	dir := t.TempDir()
	// "José Muñoz" en ISO-8859-1
	writeFile(t, dir, catalog.CustomersFile, []byte("id,name,phone\ncu1,Jos\xe9 Mu\xf1oz,3001234567\n"))
	writeFile(t, dir, catalog.ProductsFile, []byte("id,name\np1,Arroz\np2,Az\xfacar\n"))
	writeFile(t, dir, catalog.TypesFile, []byte("id,name,stake,products\nt1,Canasta,100,p1:2|p2:1\n"))

	c, err := catalog.Load(dir, catalog.Options{Charset: "iso-8859-1"})
	require.NoError(t, err)

	require.Len(t, c.Customers, 1)
	assert.Equal(t, "José Muñoz", c.Customers[0].Name)
	assert.Equal(t, "+573001234567", c.Customers[0].Phone)
	require.Len(t, c.Products, 2)
	assert.Equal(t, "Azúcar", c.Products[1].Name)
	require.Len(t, c.Types, 1)
	assert.Equal(t, []string{"p1", "p2"}, c.Types[0].ProductsIDs)
	assert.Equal(t, []int64{2, 1}, c.Types[0].ProductsNumbers)
	assert.Equal(t, "100", c.Types[0].Stake.String())
	assert.Empty(t, c.Agents, "archivo ausente = sin filas")
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"stake":    "id,name,stake,products\nt1,Canasta,0,p1:1\n",
		"escala":   "id,name,stake,products\nt1,Canasta,10.123456,p1:1\n",
		"formato":  "id,name,stake,products\nt1,Canasta,10,p1\n",
		"repetido": "id,name,stake,products\nt1,Canasta,10,p1:1|p1:2\n",
		"sin name": "id,name,stake,products\nt1,,10,p1:1\n",
		"cantidad": "id,name,stake,products\nt1,Canasta,10,p1:x\n",
		"columnas": "id,name\nt1,Canasta\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, catalog.TypesFile, []byte(content))
			_, err := catalog.Load(dir, catalog.Options{Charset: "utf-8"})
			assert.Error(t, err)
		})
	}

	_, err := catalog.Load(t.TempDir(), catalog.Options{Charset: "ebcdic"})
	assert.Error(t, err)
}

func TestApply_IntoMemoryStore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, catalog.AgentsFile, []byte("id,name\na1,Ana\n"))
	writeFile(t, dir, catalog.CollectorsFile, []byte("id,name\ncol1,Carlos\n"))
	c, err := catalog.Load(dir, catalog.Options{})
	require.NoError(t, err)

	s := memory.NewStore()
	c.Apply(s)
	ctx := context.Background()
	require.NoError(t, s.Run(ctx, func(repos repository.Repositories) error {
		a, err := repos.Agents.GetByID(ctx, "a1")
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, "Ana", a.Name)
		col, err := repos.Collectors.GetByID(ctx, "col1")
		require.NoError(t, err)
		assert.NotNil(t, col)
		return nil
	}))
}

func TestWriteSQL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, catalog.AgentsFile, []byte("id,name\na1,O'Brien\n"))
	writeFile(t, dir, catalog.CustomersFile, []byte("id,name,phone\ncu1,Luz,+57 310 555 1234\n"))
	writeFile(t, dir, catalog.TypesFile, []byte("id,name,stake,products\nt1,Canasta,150.50,p1:2|p2:1\n"))
	c, err := catalog.Load(dir, catalog.Options{Charset: "utf-8"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, catalog.WriteSQL(&buf, c))
	sql := buf.String()

	assert.Contains(t, sql, "INSERT INTO agents (id, name) VALUES\n  ('a1', 'O''Brien')\n")
	assert.Contains(t, sql, "('cu1', 'Luz', '+573105551234')")
	assert.Contains(t, sql, "phone = EXCLUDED.phone")
	assert.Contains(t, sql, "ARRAY['p1', 'p2']::TEXT[], ARRAY[2, 1]::BIGINT[]")
	assert.Contains(t, sql, "150.5")
	assert.NotContains(t, sql, "INSERT INTO collectors", "sin filas no hay INSERT")
	assert.True(t, strings.Index(sql, "INSERT INTO customers") < strings.Index(sql, "INSERT INTO types"))
}

func TestNormalizePhone(t *testing.T) {
	got, err := catalog.NormalizePhone("300 123 4567", "CO")
	require.NoError(t, err)
	assert.Equal(t, "+573001234567", got)

	_, err = catalog.NormalizePhone("123", "CO")
	assert.Error(t, err)

	dir := t.TempDir()
	writeFile(t, dir, catalog.CustomersFile, []byte("id,name,phone\ncu1,Luz,12\n"))
	_, err = catalog.Load(dir, catalog.Options{})
	assert.Error(t, err)
}
