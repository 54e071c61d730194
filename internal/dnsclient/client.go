package dnsclient

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const (
	DefaultServer  = "8.8.8.8:53"
	defaultTimeout = 5 * time.Second
)

type MX struct {
	Host     string
	Priority uint16
}

// Resolver is the DNS lookup surface the health checkers depend on. NXDOMAIN
// answers come back as an empty, error-free result so callers can tell
// "record absent" apart from "lookup broken".
type Resolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
	LookupMX(ctx context.Context, name string) ([]MX, error)
	LookupA(ctx context.Context, name string) ([]string, error)
}

type client struct {
	server string
	dns    *dns.Client
}

func New(server string) Resolver {
	if server == "" {
		server = DefaultServer
	}
	return &client{
		server: server,
		dns:    &dns.Client{Timeout: defaultTimeout},
	}
}

func (c *client) query(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	in, _, err := c.dns.ExchangeContext(ctx, msg, c.server)
	if err != nil {
		return nil, fmt.Errorf("dns query %s: %w", name, err)
	}
	if in.Rcode == dns.RcodeNameError {
		return nil, nil
	}
	if in.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("dns query %s: %s", name, dns.RcodeToString[in.Rcode])
	}
	return in, nil
}

func (c *client) LookupTXT(ctx context.Context, name string) ([]string, error) {
	in, err := c.query(ctx, name, dns.TypeTXT)
	if err != nil || in == nil {
		return nil, err
	}
	var out []string
	for _, rr := range in.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			out = append(out, strings.Join(txt.Txt, ""))
		}
	}
	return out, nil
}

func (c *client) LookupMX(ctx context.Context, name string) ([]MX, error) {
	in, err := c.query(ctx, name, dns.TypeMX)
	if err != nil || in == nil {
		return nil, err
	}
	var out []MX
	for _, rr := range in.Answer {
		if mx, ok := rr.(*dns.MX); ok {
			out = append(out, MX{Host: strings.TrimSuffix(mx.Mx, "."), Priority: mx.Preference})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (c *client) LookupA(ctx context.Context, name string) ([]string, error) {
	in, err := c.query(ctx, name, dns.TypeA)
	if err != nil || in == nil {
		return nil, err
	}
	var out []string
	for _, rr := range in.Answer {
		if a, ok := rr.(*dns.A); ok {
			out = append(out, a.A.String())
		}
	}
	return out, nil
}
