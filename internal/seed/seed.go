// Package seed loads demo users and caravans from a YAML fixture into the
// in-memory stores at start-up.
package seed

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/caravan-share/internal/domain"
)

// Fixture is the top-level YAML document.
type Fixture struct {
	Users    []User    `yaml:"users"`
	Caravans []Caravan `yaml:"caravans"`
}

// User is one user entry. Money is written as a string so YAML float
// parsing never touches it.
type User struct {
	ID      int64  `yaml:"id"`
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Balance string `yaml:"balance"`
}

// Caravan is one caravan entry. An empty daily_rate uses the flat rate.
type Caravan struct {
	ID        int64  `yaml:"id"`
	OwnerID   int64  `yaml:"owner_id"`
	Name      string `yaml:"name"`
	Category  string `yaml:"category"`
	DailyRate string `yaml:"daily_rate"`
}

// UserSaver and CaravanSaver are the store writes Apply needs.
type UserSaver interface {
	Save(u domain.User) (domain.User, error)
}

type CaravanSaver interface {
	Save(c domain.Caravan) (domain.Caravan, error)
}

// Load reads and parses the fixture at path.
func Load(path string) (Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("seed.Load: %w", err)
	}
	defer f.Close()
	fx, err := Parse(f)
	if err != nil {
		return Fixture{}, fmt.Errorf("seed.Load %s: %w", path, err)
	}
	return fx, nil
}

// Parse decodes a fixture. Unknown fields are rejected.
func Parse(r io.Reader) (Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fx Fixture
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return Fixture{}, fmt.Errorf("seed.Parse: %w", err)
	}
	return fx, nil
}

// Apply saves users first, then caravans, and returns how many of each were
// stored. Entries keep their explicit ids; the stores move their counters
// past them.
func (fx Fixture) Apply(users UserSaver, caravans CaravanSaver) (nUsers, nCaravans int, err error) {
	for _, u := range fx.Users {
		balance, err := parseMoney(u.Balance)
		if err != nil {
			return nUsers, nCaravans, fmt.Errorf("seed.Apply: user %q balance: %w", u.Name, err)
		}
		if _, err := users.Save(domain.User{ID: u.ID, Name: u.Name, Email: u.Email, Balance: balance}); err != nil {
			return nUsers, nCaravans, fmt.Errorf("seed.Apply: user %q: %w", u.Name, err)
		}
		nUsers++
	}
	for _, c := range fx.Caravans {
		rate, err := parseMoney(c.DailyRate)
		if err != nil {
			return nUsers, nCaravans, fmt.Errorf("seed.Apply: caravan %q daily_rate: %w", c.Name, err)
		}
		if _, err := caravans.Save(domain.Caravan{
			ID:        c.ID,
			OwnerID:   c.OwnerID,
			Name:      c.Name,
			Category:  c.Category,
			DailyRate: rate,
		}); err != nil {
			return nUsers, nCaravans, fmt.Errorf("seed.Apply: caravan %q: %w", c.Name, err)
		}
		nCaravans++
	}
	return nUsers, nCaravans, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
