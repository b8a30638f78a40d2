package reconcile

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/mintvault/catalog-cli/internal/model"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

type fixtureFile struct {
	Items []fixtureItem `yaml:"items"`
}

type fixtureItem struct {
	Name      string `yaml:"name"`
	Code      string `yaml:"code"`
	SourceURL string `yaml:"source_url"`
}

// FixtureItems returns the built-in scraped-item set used when the feed
// is unreachable. The set is fixed and carries fixture:// provenance so
// its staged rows are never mistaken for live scrapes.
func FixtureItems() ([]model.ScrapedItem, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(fixturesYAML, &f); err != nil {
		return nil, eris.Wrap(err, "reconcile: parse fixtures")
	}

	items := make([]model.ScrapedItem, 0, len(f.Items))
	for _, it := range f.Items {
		items = append(items, model.ScrapedItem{
			Name:      it.Name,
			Code:      it.Code,
			SourceURL: it.SourceURL,
		})
	}
	return items, nil
}
