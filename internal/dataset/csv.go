package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"mspro-labs/dining-buddy/internal/models"
)

// Header is the column layout of the exported table.
var Header = []string{
	"Location",
	"Meal",
	"Dish Name",
	"Cost ($)",
	"Calories (kcal)",
	"Diets",
	"Allergens",
	"Protein (g)",
	"Dietary Fiber (g)",
	"Sugars (g)",
	"Saturated Fat (g)",
	"Sodium (mg)",
	"Nutrient Score",
}

// WriteCSV writes the header and one record per row. Null cost is an empty cell.
func WriteCSV(w io.Writer, rows []models.DishRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		cost := ""
		if r.Cost != nil {
			cost = formatFloat(*r.Cost)
		}
		record := []string{
			r.Location,
			r.Meal,
			r.DishName,
			cost,
			strconv.Itoa(r.Calories),
			r.Diets,
			r.Allergens,
			formatFloat(r.Protein),
			formatFloat(r.Fiber),
			formatFloat(r.Sugar),
			formatFloat(r.SaturatedFat),
			formatFloat(r.Sodium),
			formatFloat(r.NutrientScore),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table written by WriteCSV. Columns are located by header
// name, so column order does not matter.
func ReadCSV(r io.Reader) ([]models.DishRow, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range Header {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var rows []models.DishRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(rec []string, idx map[string]int) (models.DishRow, error) {
	col := func(name string) string { return rec[idx[name]] }

	row := models.DishRow{
		Location:  col("Location"),
		Meal:      col("Meal"),
		DishName:  col("Dish Name"),
		Diets:     col("Diets"),
		Allergens: col("Allergens"),
	}
	if c := col("Cost ($)"); c != "" {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return row, fmt.Errorf("cost: %w", err)
		}
		row.Cost = &v
	}

	// Calories may have been written as a float by other tools ("250.0").
	cal, err := strconv.ParseFloat(col("Calories (kcal)"), 64)
	if err != nil {
		return row, fmt.Errorf("calories: %w", err)
	}
	row.Calories = int(cal)

	fields := []struct {
		name string
		dst  *float64
	}{
		{"Protein (g)", &row.Protein},
		{"Dietary Fiber (g)", &row.Fiber},
		{"Sugars (g)", &row.Sugar},
		{"Saturated Fat (g)", &row.SaturatedFat},
		{"Sodium (mg)", &row.Sodium},
		{"Nutrient Score", &row.NutrientScore},
	}
	for _, f := range fields {
		s := col(f.name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return row, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return row, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SaveCSV writes rows to path, replacing any existing file.
func SaveCSV(path string, rows []models.DishRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// LoadCSV reads the table stored at path.
func LoadCSV(path string) ([]models.DishRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}
