package analyzer

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/logging"
	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
)

// MaxSampleRecords bounds how many sample records one entity accumulates
// across all contributing sources.
const MaxSampleRecords = 50

// FieldAccumulator collects the raw sampled values for one field of one
// entity, across every source that contributes the field.
type FieldAccumulator struct {
	Name                string
	DeclaredType        string // source-declared type name, when the source carries one
	DeclaredKind        models.SourceKind
	RawSamples          []any
	ContributingSources map[string]bool
}

// EntityAccumulator folds the records of one discovered entity. Field
// discovery order is first-seen-wins and therefore depends on input source
// order; merged statistics do not.
type EntityAccumulator struct {
	Name                string
	ContributingSources map[string]bool
	SampleRecords       []map[string]any
	fieldOrder          []string
	fields              map[string]*FieldAccumulator
	seenRecords         map[string]bool
}

// Fields returns the field accumulators in first-seen order.
func (a *EntityAccumulator) Fields() []*FieldAccumulator {
	out := make([]*FieldAccumulator, 0, len(a.fieldOrder))
	for _, name := range a.fieldOrder {
		out = append(out, a.fields[name])
	}
	return out
}

// Field returns the accumulator for a field name, or nil.
func (a *EntityAccumulator) Field(name string) *FieldAccumulator {
	return a.fields[name]
}

// EntityGroups is an ordered map of entity name to accumulator. Iteration
// order is entity discovery order, which keeps downstream output
// deterministic for a given input order.
type EntityGroups struct {
	order  []string
	byName map[string]*EntityAccumulator
}

// Names returns entity names in discovery order.
func (g *EntityGroups) Names() []string {
	return g.order
}

// Get returns the accumulator for an entity name, or nil.
func (g *EntityGroups) Get(name string) *EntityAccumulator {
	return g.byName[name]
}

// Len returns the number of discovered entities.
func (g *EntityGroups) Len() int {
	return len(g.order)
}

func (g *EntityGroups) entity(name string) *EntityAccumulator {
	if acc, ok := g.byName[name]; ok {
		return acc
	}
	acc := &EntityAccumulator{
		Name:                name,
		ContributingSources: make(map[string]bool),
		fields:              make(map[string]*FieldAccumulator),
		seenRecords:         make(map[string]bool),
	}
	g.byName[name] = acc
	g.order = append(g.order, name)
	return acc
}

// commerceCollections maps commerce-platform sub-collection keys to entity
// names.
var commerceCollections = map[string]string{
	"products":  "product",
	"customers": "customer",
	"orders":    "order",
}

// commerceCollectionOrder fixes iteration order over commerceCollections.
var commerceCollectionOrder = []string{"products", "customers", "orders"}

// paymentCollections maps payment-platform sub-collection keys to entity
// names. Both "payments" and "charges" spellings feed the payment entity.
var paymentCollections = map[string]string{
	"customers":     "customer",
	"payments":      "payment",
	"charges":       "payment",
	"subscriptions": "subscription",
}

var paymentCollectionOrder = []string{"customers", "payments", "charges", "subscriptions"}

// GroupByEntity folds an ordered list of data sources into per-entity
// accumulators. Sources whose shape matches no extraction rule contribute
// zero entities; that is expected, not an error.
func (s *service) GroupByEntity(sources []models.DataSource) *EntityGroups {
	groups := &EntityGroups{byName: make(map[string]*EntityAccumulator)}

	for i := range sources {
		src := &sources[i]
		before := groups.Len()

		switch src.Kind {
		case models.SourceKindCommerce:
			s.groupSubCollections(groups, src, commerceCollections, commerceCollectionOrder)
		case models.SourceKindPayments:
			s.groupSubCollections(groups, src, paymentCollections, paymentCollectionOrder)
		case models.SourceKindPostgres, models.SourceKindMySQL:
			s.groupRelational(groups, src)
		case models.SourceKindGeneric:
			s.groupGeneric(groups, src)
		default:
			s.logger.Debug("No extraction rule for source kind",
				zap.String("source", src.Name),
				zap.String("kind", string(src.Kind)))
		}

		if groups.Len() == before && src.Kind != "" {
			s.logger.Debug("Source contributed no entities",
				zap.String("source", src.Name),
				zap.String("kind", string(src.Kind)))
		}
	}

	return groups
}

// groupSubCollections handles platform sources that expose fixed,
// well-known sub-collections (commerce and payment exports).
func (s *service) groupSubCollections(groups *EntityGroups, src *models.DataSource, collections map[string]string, keyOrder []string) {
	for _, key := range keyOrder {
		records := src.SubCollection(key)
		if records == nil {
			continue
		}
		s.fold(groups, src, collections[key], key, records)
	}
}

// groupRelational handles relational sources: one entity per top-level
// table key, entity name canonicalized from the table name.
func (s *service) groupRelational(groups *EntityGroups, src *models.DataSource) {
	obj, ok := src.Payload.(map[string]any)
	if !ok {
		return
	}
	for _, key := range sortedKeys(obj) {
		records := models.RecordList(obj[key])
		if records == nil {
			continue
		}
		s.fold(groups, src, canonicalEntityName(key), key, records)
	}
}

// groupGeneric handles generic JSON feeds: a flat top-level array becomes
// one entity named after the source, and nested arrays one level down
// become one entity per key.
func (s *service) groupGeneric(groups *EntityGroups, src *models.DataSource) {
	if records := models.RecordList(src.Payload); records != nil {
		s.fold(groups, src, canonicalEntityName(src.Name), src.Name, records)
		return
	}

	obj, ok := src.Payload.(map[string]any)
	if !ok {
		return
	}
	for _, key := range sortedKeys(obj) {
		records := models.RecordList(obj[key])
		if records == nil {
			continue
		}
		s.fold(groups, src, canonicalEntityName(key), key, records)
	}
}

// fold merges one record list into an entity accumulator. The merge is
// append-only: no source can remove or override a field another source
// contributed.
func (s *service) fold(groups *EntityGroups, src *models.DataSource, entityName, collectionKey string, records []map[string]any) {
	acc := groups.entity(entityName)
	acc.ContributingSources[src.Name] = true

	declared := declaredTypes(src, collectionKey, entityName)

	for _, record := range records {
		// Exact-duplicate records fold once, which keeps grouping
		// idempotent when the same source appears twice in the input.
		// JSON encoding sorts map keys and keeps scalar types distinct,
		// so 1 and "1" never collapse into one sample.
		fingerprint, ok := recordFingerprint(record)
		if ok {
			if acc.seenRecords[fingerprint] {
				continue
			}
			acc.seenRecords[fingerprint] = true
		}

		if len(acc.SampleRecords) < MaxSampleRecords {
			acc.SampleRecords = append(acc.SampleRecords, record)
		}
		for _, fieldName := range sortedKeys(record) {
			field, ok := acc.fields[fieldName]
			if !ok {
				field = &FieldAccumulator{
					Name:                fieldName,
					ContributingSources: make(map[string]bool),
				}
				acc.fields[fieldName] = field
				acc.fieldOrder = append(acc.fieldOrder, fieldName)
			}
			field.RawSamples = append(field.RawSamples, record[fieldName])
			field.ContributingSources[src.Name] = true
			if field.DeclaredType == "" {
				if t, ok := declared[fieldName]; ok {
					field.DeclaredType = t
					field.DeclaredKind = src.Kind
				}
			}
		}
	}

	var sample map[string]any
	if len(acc.SampleRecords) > 0 {
		sample = logging.SanitizeSampleRecord(acc.SampleRecords[0])
	}
	s.logger.Debug("Folded records into entity",
		zap.String("source", src.Name),
		zap.String("entity", entityName),
		zap.Int("records", len(records)),
		zap.Any("sample", sample))
}

// declaredTypes extracts source-declared field types from source metadata.
// The expected shape is metadata["declared_types"][collectionKey][field] =
// type name; the entity name is accepted as an alternate key.
func declaredTypes(src *models.DataSource, collectionKey, entityName string) map[string]string {
	raw, ok := src.Metadata["declared_types"].(map[string]any)
	if !ok {
		return nil
	}

	perEntity, ok := raw[collectionKey].(map[string]any)
	if !ok {
		perEntity, ok = raw[entityName].(map[string]any)
	}
	if !ok {
		return nil
	}

	out := make(map[string]string, len(perEntity))
	for field, t := range perEntity {
		if name, ok := t.(string); ok {
			out[field] = name
		}
	}
	return out
}

// canonicalEntityName normalizes a raw table/key/source name into the
// canonical entity key: singular, lowercase, underscore-separated.
// "OrderItems" and "order_items" both become "order_item".
func canonicalEntityName(raw string) string {
	snake := toSnakeCase(strings.TrimSpace(raw))
	return inflection.Singular(snake)
}

// recordFingerprint encodes a record into a stable dedupe key. JSON
// keeps scalar types apart where a formatted print would not. Records
// holding unencodable values report false and are never deduplicated.
func recordFingerprint(record map[string]any) (string, bool) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// sortedKeys returns map keys in lexical order. Decoded JSON objects are
// unordered Go maps, so key order inside a single record is normalized
// alphabetically; first-seen ordering applies across records and sources.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toSnakeCase converts camelCase, PascalCase, kebab-case, and spaced names
// to snake_case.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '-' || r == ' ':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			if i > 0 && s[i-1] != '_' && s[i-1] != '-' && s[i-1] != ' ' && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
