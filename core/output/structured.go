package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sunxiaoguang/serverless-cost-calculator/internal/config"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/errors"
)

// structuredRenderer emits machine-readable reports on its writer.
// Advisories go to stderr so the report stream stays parseable.
type structuredRenderer struct {
	format Format
	w      io.Writer
}

func (s *structuredRenderer) Warnf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func (s *structuredRenderer) Advisef(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func (s *structuredRenderer) Info(string) {}

func (s *structuredRenderer) Welcome(config.Source) {}

func (s *structuredRenderer) Render(reports []Report) error {
	switch s.format {
	case FormatJSON:
		encoded, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return errors.Wrap(errors.TypeUnsupported, "failed to encode report", err)
		}
		_, err = fmt.Fprintln(s.w, string(encoded))
		return err
	case FormatYAML:
		encoded, err := yaml.Marshal(reports)
		if err != nil {
			return errors.Wrap(errors.TypeUnsupported, "failed to encode report", err)
		}
		_, err = s.w.Write(encoded)
		return err
	default:
		return errors.Newf(errors.TypeUnsupported, "unknown output format '%s'", s.format)
	}
}
