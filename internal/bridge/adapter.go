// Package bridge answers count, retrieve and search requests against HubSpot
// CRM structures (Companies, Contacts, Tickets, and Adhoc paths).
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/hubspotrun/internal/auth"
	"github.com/loykin/hubspotrun/internal/common"
	"github.com/loykin/hubspotrun/internal/constants"
	"github.com/loykin/hubspotrun/internal/env"
	"github.com/loykin/hubspotrun/internal/httpc"
	"github.com/loykin/hubspotrun/internal/metrics"
	"github.com/loykin/hubspotrun/pkg/fixture"
	"github.com/tidwall/gjson"
)

var (
	ErrMultipleResults   = errors.New("bridge: retrieve must return a single result, multiple results found")
	ErrUnexpectedCount   = errors.New("bridge: the count result was unexpected, check the query and rerun")
	ErrInvalidSearchBody = errors.New("bridge: 'body' parameter was not valid JSON")
	ErrMultipleSorts     = errors.New("bridge: HubSpot only supports a sort on one property")
)

// Request is one bridge call.
type Request struct {
	Structure  string
	Query      string
	Fields     []string
	Parameters map[string]string
	Metadata   map[string]string
}

// Record maps field names to values.
type Record map[string]interface{}

// RecordList is the result of Search.
type RecordList struct {
	Fields   []string
	Records  []Record
	Metadata map[string]string
}

type Config struct {
	APILocation string
	APIKey      string
	// Auth defaults to private_app like the handler.
	Auth   *auth.Auth
	Env    *env.Env
	Client *resty.Client
}

type Adapter struct {
	api *apiHelper
}

// New resolves credentials once and returns a ready adapter.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	loc := strings.TrimSpace(cfg.APILocation)
	if loc == "" {
		loc = fixture.DefaultAPILocation
	}
	client := cfg.Client
	if client == nil {
		client = (&httpc.Httpc{}).New()
	}
	inject, err := cfg.Auth.Resolve(ctx, cfg.Env, auth.Credentials{APIKey: cfg.APIKey, APILocation: loc})
	if err != nil {
		return nil, err
	}
	return &Adapter{api: &apiHelper{client: client, baseURL: loc, inject: inject}}, nil
}

// prepared is a request resolved into a path, query parameters and an
// optional search body.
type prepared struct {
	path     string
	accessor string
	params   map[string]string
	body     map[string]interface{}
	isSearch bool
}

func prepare(r Request) (prepared, error) {
	m, err := lookupMapping(r.Structure)
	if err != nil {
		return prepared{}, err
	}
	params, err := m.parameters(r.Query, r.Parameters)
	if err != nil {
		return prepared{}, err
	}
	p := prepared{params: params}
	if raw, ok := params["body"]; ok {
		p.isSearch = true
		p.body = map[string]interface{}{}
		if strings.TrimSpace(raw) != "" {
			dec := json.NewDecoder(strings.NewReader(raw))
			dec.UseNumber()
			if err := dec.Decode(&p.body); err != nil {
				return prepared{}, fmt.Errorf("%w: %v", ErrInvalidSearchBody, err)
			}
		}
	}
	p.path = m.path(params)
	delete(params, "body")
	p.accessor = m.accessorFor(params)
	return p, nil
}

func (a *Adapter) fetch(ctx context.Context, p prepared) (gjson.Result, error) {
	if p.isSearch {
		b, err := json.Marshal(p.body)
		if err != nil {
			return gjson.Result{}, err
		}
		return a.api.post(ctx, p.path, b)
	}
	q := url.Values{}
	for k, v := range p.params {
		q.Set(k, v)
	}
	return a.api.get(ctx, p.path, q)
}

// records returns the accessor array, the accessor object as a single
// record, or the whole response as a single record.
func records(resp gjson.Result, accessor string) []gjson.Result {
	data := resp
	if accessor != "" {
		if v := resp.Get(escapeKey(accessor)); v.Exists() {
			data = v
		}
	}
	switch {
	case data.IsArray():
		return data.Array()
	case data.IsObject():
		return []gjson.Result{data}
	default:
		return nil
	}
}

// defaultFields lists the keys of obj in document order.
func defaultFields(obj gjson.Result) []string {
	var out []string
	obj.ForEach(func(k, _ gjson.Result) bool {
		out = append(out, k.String())
		return true
	})
	return out
}

// buildRecord reads each field from obj. $.-prefixed fields are JSON paths;
// a path missing from obj yields nil.
func buildRecord(fields []string, obj gjson.Result) Record {
	rec := make(Record, len(fields))
	for _, f := range fields {
		path, ok := gjsonPath(f)
		if !ok {
			path = escapeKey(f)
		}
		v := obj.Get(path)
		if !v.Exists() {
			rec[f] = nil
			continue
		}
		rec[f] = v.Value()
	}
	return rec
}

// Count returns the number of records matching the request.
func (a *Adapter) Count(ctx context.Context, r Request) (count int, err error) {
	logger := common.GetLogger().WithComponent("bridge").WithStructure(r.Structure)
	defer func() { metrics.ObserveBridge(structureLabel(r.Structure), "count", err) }()
	logger.Debug("counting records", "query", r.Query)

	p, err := prepare(r)
	if err != nil {
		return 0, err
	}
	resp, err := a.fetch(ctx, p)
	if err != nil {
		return 0, err
	}

	for _, key := range []string{"total", "total_entries"} {
		if v := resp.Get(key); v.Exists() && v.Type == gjson.Number {
			return int(v.Int()), nil
		}
	}
	if arr := resp.Get(escapeKey(p.accessor)); p.accessor != "" && arr.IsArray() {
		return len(arr.Array()), nil
	}
	if resp.Get("id").Exists() {
		return 1, nil
	}
	return 0, ErrUnexpectedCount
}

// Retrieve returns the single matching record, or an empty record when
// nothing matched.
func (a *Adapter) Retrieve(ctx context.Context, r Request) (rec Record, err error) {
	logger := common.GetLogger().WithComponent("bridge").WithStructure(r.Structure)
	defer func() { metrics.ObserveBridge(structureLabel(r.Structure), "retrieve", err) }()
	logger.Debug("retrieving record", "query", r.Query, "fields", r.Fields)

	p, err := prepare(r)
	if err != nil {
		return nil, err
	}
	resp, err := a.fetch(ctx, p)
	if err != nil {
		return nil, err
	}

	items := records(resp, p.accessor)
	switch len(items) {
	case 0:
		logger.Debug("no results found", "query", r.Query)
		return Record{}, nil
	case 1:
		fields := r.Fields
		if len(fields) == 0 {
			fields = defaultFields(items[0])
		}
		return buildRecord(fields, items[0]), nil
	default:
		return nil, ErrMultipleResults
	}
}

// Search returns every matching record of one page. The metadata "page"
// value is sent as HubSpot's "after" token and the next token is reported
// under metadata "next_page".
func (a *Adapter) Search(ctx context.Context, r Request) (list RecordList, err error) {
	logger := common.GetLogger().WithComponent("bridge").WithStructure(r.Structure)
	defer func() { metrics.ObserveBridge(structureLabel(r.Structure), "search", err) }()
	logger.Debug("searching records", "query", r.Query, "fields", r.Fields)

	p, err := prepare(r)
	if err != nil {
		return RecordList{}, err
	}

	page := r.Metadata["page"]
	props := PropertyNames(r.Fields)
	if p.isSearch {
		if _, ok := p.body["limit"]; !ok {
			p.body["limit"] = constants.DefaultSearchLimit
		}
		if _, ok := p.body["after"]; !ok && page != "" {
			p.body["after"] = page
		}
		if _, ok := p.body["properties"]; !ok && len(props) > 0 {
			p.body["properties"] = props
		}
		if order := r.Metadata["order"]; order != "" {
			if _, ok := p.body["sorts"]; !ok {
				sorts, serr := sortsFromOrder(order)
				if serr != nil {
					return RecordList{}, serr
				}
				p.body["sorts"] = sorts
			}
		}
	} else {
		if _, ok := p.params["after"]; !ok && page != "" {
			p.params["after"] = page
		}
		if _, ok := p.params["limit"]; !ok {
			p.params["limit"] = strconv.Itoa(constants.DefaultSearchLimit)
		}
		if len(props) > 0 {
			p.params["properties"] = strings.Join(props, ",")
		}
	}

	resp, err := a.fetch(ctx, p)
	if err != nil {
		return RecordList{}, err
	}

	fields := append([]string(nil), r.Fields...)
	items := records(resp, p.accessor)
	out := RecordList{Metadata: map[string]string{"next_page": resp.Get("paging.next.after").String()}}
	if len(items) > 0 && len(fields) == 0 {
		fields = defaultFields(items[0])
	}
	for _, it := range items {
		out.Records = append(out.Records, buildRecord(fields, it))
	}
	out.Fields = fields
	return out, nil
}

func sortsFromOrder(order string) ([]map[string]string, error) {
	items, err := ParseOrder(order)
	if err != nil {
		return nil, err
	}
	if len(items) != 1 {
		return nil, ErrMultipleSorts
	}
	name := items[0].Field
	if p := propertyName(name); p != "" {
		name = p
	}
	dir := "DESCENDING"
	if items[0].Ascending {
		dir = "ASCENDING"
	}
	return []map[string]string{{"propertyName": name, "direction": dir}}, nil
}
