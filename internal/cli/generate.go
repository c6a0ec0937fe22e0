package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/interpretive-systems/anchor/internal/config"
	"github.com/interpretive-systems/anchor/internal/generation"
	"github.com/interpretive-systems/anchor/internal/logger"
	"github.com/interpretive-systems/anchor/internal/topics"
)

// errGenerationFailed marks a failed attempt that has already been reported.
var errGenerationFailed = errors.New("generation failed")

func newGenerateCommand(cc *commandContext) *cobra.Command {
	var (
		topicArgs []string
		source    string
		kind      string
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one artifact without the console",
		Example: `  anchor generate --topic "Climate Change"
  anchor generate -t AI --source news --kind audio --out ./clips`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := topics.ParseSourceMode(source)
			if err != nil {
				return err
			}
			artifactKind, err := generation.ParseArtifactKind(kind)
			if err != nil {
				return err
			}
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(outDir) != "" {
				dir, err := config.ExpandPath(strings.TrimSpace(outDir))
				if err != nil {
					return err
				}
				cfg.Paths.ArtifactDir = dir
			}
			if err := cc.setupLogging(cmd.ErrOrStderr()); err != nil {
				return err
			}
			defer logger.Close()

			s, err := cc.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			for _, t := range topicArgs {
				if err := s.AddTopic(t); err != nil {
					if errors.Is(err, topics.ErrAtCapacity) {
						return fmt.Errorf("at most %d topic(s) allowed", s.Registry().Cap())
					}
					return fmt.Errorf("topic %q: %w", t, err)
				}
			}
			s.SelectMode(mode)
			s.SelectKind(artifactKind)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Backend", statusInfo, cfg.Backend.URL, colorize))
			fmt.Fprintln(out, renderStatusLine("Request", statusInfo,
				fmt.Sprintf("%s for %s (%s)", artifactKind, strings.Join(s.Topics(), ", "), mode.Label()), colorize))

			started := time.Now()
			res, err := s.Submit(cmd.Context())
			if err != nil {
				return err
			}
			elapsed := time.Since(started).Round(time.Millisecond)

			rows := [][]string{
				{"Topic", strings.Join(s.Topics(), ", ")},
				{"Source", mode.Label()},
				{"Kind", artifactKind.String()},
				{"Duration", elapsed.String()},
			}
			if res.Status == generation.ResultSuccess {
				fmt.Fprintln(out, renderStatusLine("Result", statusOK, res.Artifact.Ref(), colorize))
				rows = append(rows, []string{"Artifact", res.Artifact.Ref()})
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
				return nil
			}
			fmt.Fprintln(out, renderStatusLine("Result", statusError, res.Err.Error(), colorize))
			rows = append(rows, []string{"Error", res.Err.Kind.String()}, []string{"Message", res.Err.Message})
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
			return errGenerationFailed
		},
	}

	cmd.Flags().StringArrayVarP(&topicArgs, "topic", "t", nil, "Topic to cover (repeatable up to topics.max_topics)")
	cmd.Flags().StringVarP(&source, "source", "s", "both", "Content source: both, news, reddit")
	cmd.Flags().StringVarP(&kind, "kind", "k", "video", "Artifact kind: video or audio")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for audio files (overrides paths.artifact_dir)")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}
