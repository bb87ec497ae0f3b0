package connection

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/rickgao/bmv-data/internal/model"
)

// Environment is a BMV multicast environment.
type Environment string

const (
	EnvProd Environment = "PROD"
	EnvDRP  Environment = "DRP"
	EnvTest Environment = "TEST"
)

// Environments lists every known environment.
var Environments = []Environment{EnvProd, EnvDRP, EnvTest}

// ParseEnvironment parses an environment name, ignoring case.
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := groupPlan[env]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEnvironment, s)
	}
	return env, nil
}

// groupPrefix holds the first three octets and port of feed A and feed B.
type groupPrefix struct {
	a, b         string
	portA, portB int
}

var groupPlan = map[Environment]groupPrefix{
	EnvProd: {a: "239.100.100", b: "239.100.200", portA: 12121, portB: 12122},
	EnvDRP:  {a: "239.150.100", b: "239.150.200", portA: 12131, portB: 12132},
	EnvTest: {a: "239.200.100", b: "239.200.200", portA: 12141, portB: 12142},
}

// Groups returns feed A and feed B of producto in env. The last octet of
// each group address is the producto number.
func Groups(env Environment, producto model.Group) ([]Feed, error) {
	p, ok := groupPlan[env]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEnvironment, env)
	}
	if !producto.Valid() {
		return nil, fmt.Errorf("unknown producto %d", producto)
	}
	x := strconv.Itoa(int(producto))
	return []Feed{
		{Name: x + "A", Group: net.JoinHostPort(p.a+"."+x, strconv.Itoa(p.portA))},
		{Name: x + "B", Group: net.JoinHostPort(p.b+"."+x, strconv.Itoa(p.portB))},
	}, nil
}

// SelectFeeds returns the feeds of every producto in env, keeping only
// the named sides ("A", "B"). An empty sides list keeps both.
func SelectFeeds(env Environment, productos []model.Group, sides []string) ([]Feed, error) {
	var out []Feed
	for _, p := range productos {
		feeds, err := Groups(env, p)
		if err != nil {
			return nil, err
		}
		for _, f := range feeds {
			if len(sides) == 0 || containsFold(sides, f.Name[len(f.Name)-1:]) {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
