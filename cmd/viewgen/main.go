package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/wdm0006/vistas/pkg/frame"
	"github.com/wdm0006/vistas/pkg/io/recordio"
)

var nullTokens = []string{"", "null", " NULL ", "None", "nan", "NaN"}

var series = []string{"La Casa de Papel", "Narcos", "Elite", "Dark", "Roma", "Club de Cuervos"}

type genOptions struct {
	rows     int
	users    int
	nullRate float64
	badRate  float64
	start    time.Time
	months   int
	rnd      *rand.Rand
}

// generate builds a views frame with padded user names, null tokens and
// unparseable dates mixed in at the given rates.
func generate(o genOptions) *frame.Frame {
	f := frame.MustFrame(frame.StringSchema(" Usuario ", "View_Date", "Serie", "Minutos"))
	span := o.start.AddDate(0, o.months, 0).Sub(o.start)
	for i := 0; i < o.rows; i++ {
		user := fmt.Sprintf(" user%04d ", o.rnd.Intn(o.users))
		if o.rnd.Float64() < o.nullRate {
			user = nullTokens[o.rnd.Intn(len(nullTokens))]
		}
		date := o.start.Add(time.Duration(o.rnd.Int63n(int64(span)))).Format("2006-01-02 15:04:05")
		if o.rnd.Float64() < o.badRate {
			date = "not-a-date"
		}
		f.AppendStrings([]string{user, date, series[o.rnd.Intn(len(series))], fmt.Sprint(1 + o.rnd.Intn(120))})
	}
	return f
}

func main() {
	var (
		rows     = flag.Int("rows", 10_000, "rows to generate")
		users    = flag.Int("users", 500, "distinct users")
		nullRate = flag.Float64("null-rate", 0.1, "probability of a null-token user")
		badRate  = flag.Float64("bad-date-rate", 0.01, "probability of an unparseable date")
		startStr = flag.String("start", "2024-01-01", "first possible view date")
		months   = flag.Int("months", 12, "months covered by view dates")
		out      = flag.String("out", "main_views.csv", "output path; format follows the extension")
		seed     = flag.Int64("seed", 42, "random seed")
		jsonOut  = flag.Bool("json", false, "emit JSON summary")
	)
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad -start:", err)
		os.Exit(2)
	}
	if *rows < 0 || *users <= 0 || *months <= 0 {
		fmt.Fprintln(os.Stderr, "-rows must be >= 0, -users and -months > 0")
		os.Exit(2)
	}

	began := time.Now()
	f := generate(genOptions{
		rows:     *rows,
		users:    *users,
		nullRate: *nullRate,
		badRate:  *badRate,
		start:    start,
		months:   *months,
		rnd:      rand.New(rand.NewSource(*seed)),
	})
	if err := recordio.Write(*out, f, recordio.WriteOptions{Format: recordio.Detect(*out)}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	elapsed := time.Since(began)

	summary := map[string]any{
		"rows":          *rows,
		"path":          *out,
		"elapsed_ms":    elapsed.Milliseconds(),
		"null_rate":     *nullRate,
		"bad_date_rate": *badRate,
	}
	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Rows: %d\n", *rows)
	fmt.Printf("Wrote: %s\n", *out)
	fmt.Printf("Elapsed: %s\n", elapsed)
}
