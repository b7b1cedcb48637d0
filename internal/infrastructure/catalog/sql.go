package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteSQL escribe los INSERT idempotentes (ON CONFLICT ... DO UPDATE) del catálogo.
// Los tipos van al final porque referencian productos por id.
func WriteSQL(w io.Writer, c *Catalog) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("-- Datos de referencia del libro mayor (generado por cmd/seed)\n\n")

	simple := func(table string, rows [][]string, cols string) {
		if len(rows) == 0 {
			return
		}
		fmt.Fprintf(bw, "INSERT INTO %s (%s) VALUES\n", table, cols)
		for i, r := range rows {
			quoted := make([]string, len(r))
			for j, v := range r {
				quoted[j] = quote(v)
			}
			sep := ","
			if i == len(rows)-1 {
				sep = ""
			}
			fmt.Fprintf(bw, "  (%s)%s\n", strings.Join(quoted, ", "), sep)
		}
		set := []string{"name = EXCLUDED.name"}
		if strings.Contains(cols, "phone") {
			set = append(set, "phone = EXCLUDED.phone")
		}
		fmt.Fprintf(bw, "ON CONFLICT (id) DO UPDATE SET %s, updated_at = now();\n\n", strings.Join(set, ", "))
	}

	var rows [][]string
	for _, a := range c.Agents {
		rows = append(rows, []string{a.ID, a.Name})
	}
	simple("agents", rows, "id, name")

	rows = nil
	for _, col := range c.Collectors {
		rows = append(rows, []string{col.ID, col.Name})
	}
	simple("collectors", rows, "id, name")

	rows = nil
	for _, cu := range c.Customers {
		rows = append(rows, []string{cu.ID, cu.Name, cu.Phone})
	}
	simple("customers", rows, "id, name, phone")

	rows = nil
	for _, p := range c.Products {
		rows = append(rows, []string{p.ID, p.Name})
	}
	simple("products", rows, "id, name")

	for _, t := range c.Types {
		ids := make([]string, len(t.ProductsIDs))
		for i, id := range t.ProductsIDs {
			ids[i] = quote(id)
		}
		nums := make([]string, len(t.ProductsNumbers))
		for i, n := range t.ProductsNumbers {
			nums[i] = strconv.FormatInt(n, 10)
		}
		fmt.Fprintf(bw, "INSERT INTO types (id, name, stake, products_ids, products_numbers)\n")
		fmt.Fprintf(bw, "VALUES (%s, %s, %s, ARRAY[%s]::TEXT[], ARRAY[%s]::BIGINT[])\n",
			quote(t.ID), quote(t.Name), t.Stake.String(), strings.Join(ids, ", "), strings.Join(nums, ", "))
		bw.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, stake = EXCLUDED.stake,\n")
		bw.WriteString("  products_ids = EXCLUDED.products_ids, products_numbers = EXCLUDED.products_numbers;\n")
	}
	return bw.Flush()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
