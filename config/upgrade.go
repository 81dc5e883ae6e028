package config

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/creachadair/atomicfile"
	"github.com/creachadair/tomledit"
	"github.com/creachadair/tomledit/parser"
	"github.com/creachadair/tomledit/transform"
)

// upgradePlan brings a config file written by an earlier release up to the
// current config grammar. Steps must leave an up-to-date file unchanged.
var upgradePlan = transform.Plan{
	{
		Desc: "Add top-level log_file setting",
		T: transform.EnsureKey(nil, &parser.KeyValue{
			Block: parser.Comments{"Optional size-rotated log file, written alongside stderr"},
			Name:  parser.Key{"log_file"},
			Value: parser.MustValue(`""`),
		}),
	},
	{
		Desc: "Add [abci] migrate_admin setting",
		T: transform.EnsureKey(parser.Key{"abci"}, &parser.KeyValue{
			Block: parser.Comments{"The only sender allowed to submit migrate txs"},
			Name:  parser.Key{"migrate_admin"},
			Value: parser.MustValue(`""`),
		}),
		ErrorOK: true,
	},
	{
		Desc: "Add [abci] restricted_markers setting",
		T: transform.EnsureKey(parser.Key{"abci"}, &parser.KeyValue{
			Block: parser.Comments{"Denominations whose transfers require a marker transfer"},
			Name:  parser.Key{"restricted_markers"},
			Value: parser.MustValue(`[]`),
		}),
		ErrorOK: true,
	},
	{
		Desc: "Add [abci.attribute_grants] table",
		T: transform.Func(func(_ context.Context, doc *tomledit.Document) error {
			if transform.FindTable(doc, "abci", "attribute_grants") != nil {
				return nil // nothing to do
			}
			doc.Sections = append(doc.Sections, &tomledit.Section{
				Heading: &parser.Heading{
					Block: parser.Comments{
						"Attribute names held by each account, checked against the market's",
						"required attributes.",
					},
					Name: parser.Key{"abci", "attribute_grants"},
				},
			})
			return nil
		}),
	},
	{
		Desc: "Add [psql] event sink section",
		T: transform.Func(func(_ context.Context, doc *tomledit.Document) error {
			if transform.FindTable(doc, "psql") != nil {
				return nil
			}
			doc.Sections = append(doc.Sections, &tomledit.Section{
				Heading: &parser.Heading{
					Block: parser.Comments{
						"#######################################################",
						"###          Event Sink Configuration Options       ###",
						"#######################################################",
					},
					Name: parser.Key{"psql"},
				},
				Items: []parser.Item{
					&parser.KeyValue{
						Block: parser.Comments{"PostgreSQL connection string. Leave empty to disable the sink."},
						Name:  parser.Key{"conn"},
						Value: parser.MustValue(`""`),
					},
				},
			})
			return nil
		}),
	},
}

// UpgradeConfigFile rewrites the config file at path in place, adding the
// settings introduced since it was written. Existing values and comments
// are kept.
func UpgradeConfigFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	doc, err := tomledit.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := upgradePlan.Apply(ctx, doc); err != nil {
		return fmt.Errorf("upgrade config file %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := tomledit.Format(&buf, doc); err != nil {
		return err
	}
	_, err = atomicfile.WriteAll(path, &buf, 0644)
	return err
}
