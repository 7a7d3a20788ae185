package rulefile

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jokarl/taxrules/internal/pathfilter"
	"github.com/jokarl/taxrules/internal/rules"
)

// LoadDir parses every file under dir selected by filter. A nil filter
// uses pathfilter.Default.
func LoadDir(dir string, filter *pathfilter.Filter) ([]*File, error) {
	if filter == nil {
		filter = pathfilter.Default()
	}
	paths, err := filter.FilesAbs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to discover rule files: %w", err)
	}

	files := make([]*File, 0, len(paths))
	for _, p := range paths {
		f, err := ParseFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Register adds every file to the registry. It stops at the first error,
// leaving the files registered so far in place.
func Register(reg *rules.Registry, files []*File, logger hclog.Logger) error {
	for _, f := range files {
		if err := reg.Register(f); err != nil {
			return withSource(err, f.Path)
		}
		logger.Debug("registered rule file", "protocol", f.ProtocolID, "path", f.Path, "rules", len(f.Rules))
	}
	return nil
}
