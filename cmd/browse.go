package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/recruitdesk/internal/ai"
	"github.com/spigell/recruitdesk/internal/filtering"
	"github.com/spigell/recruitdesk/internal/recruit"
	"github.com/spigell/recruitdesk/internal/store"
	"github.com/spigell/recruitdesk/internal/workflow"
)

const (
	PromptBack                 = "back"
	PromptExit                 = "Exit"
	PromptReload               = "Reload"
	PromptSetStatus            = "Set status of a résumé"
	PromptFilterStatus         = "Filter by status"
	PromptFilterFilename       = "Filter by filename"
	PromptSortOldest           = "Sort oldest first"
	PromptSortNewest           = "Sort newest first"
	PromptRequirementQuestions = "Interview questions for this requirement"
	PromptResumeQuestions      = "Interview questions for a résumé"
	PromptChangeRequirement    = "Change requirement"
	PromptChangeClient         = "Change client"
	PromptLogout               = "Log out"
	PromptAllStatuses          = "All statuses"
	PromptUnassigned           = "Without status"
	promptListSize             = 12
)

var errExit = errors.New("exit requested")

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse clients, requirements and résumés interactively",
	Run: func(cmd *cobra.Command, _ []string) {
		browse(cmd)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().Bool("fresh", false, "do not restore the last saved selection")
}

// browse is the interactive cascade: client, then requirement, then the résumé list.
func browse(cmd *cobra.Command) {
	d := setup()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	d.logger.Info("starting the recruitdesk")
	d.serveMetrics(ctx)

	st, closeStore, err := d.openStore(ctx)
	if err != nil {
		d.logger.Fatal("opening session store", zap.Error(err))
	}
	defer closeStore()

	fresh, _ := cmd.Flags().GetBool("fresh")

	opts := []workflow.SessionOption{workflow.WithStore(st)}
	if id := savedSessionID(ctx, st); id != "" && !fresh {
		opts = append(opts, workflow.WithID(id))
	}

	session := d.newSession(opts...)
	defer func() {
		if err := session.Close(context.Background()); err != nil {
			d.logger.Warn("saving session", zap.Error(err))
		}
	}()

	if err := session.Start(ctx); err != nil {
		d.logger.Error("starting session", zap.Error(err), zap.String("message", workflow.UserMessage(err)))
		return
	}

	if !fresh {
		restored, err := session.Restore(ctx)
		if err != nil {
			d.logger.Warn("restoring session", zap.Error(err))
		}
		if restored {
			d.logger.Info("continuing the previous session")
		}
	}

	b := &browser{
		deps:    d,
		session: session,
		out:     cmd.OutOrStdout(),
	}

	if d.config.AI != nil && d.config.AI.Enabled {
		questioner, err := d.newQuestioner(ctx)
		if err != nil {
			d.logger.Warn("interview questions are unavailable", zap.Error(err))
		}
		b.questioner = questioner
	}

	if err := b.loop(ctx); err != nil {
		d.logger.Error("exiting", zap.Error(err))
	}
}

// savedSessionID returns the id of the stored session so a continued session logs
// under the same id.
func savedSessionID(ctx context.Context, st store.Store) string {
	snap, err := st.Load(ctx)
	if err != nil || snap.ClientID == "" {
		return ""
	}
	return snap.SessionID
}

type browser struct {
	*deps
	session    *workflow.Session
	questioner ai.Questioner
	out        io.Writer
	filename   string
}

func (b *browser) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		sel := b.session.Selection()

		var err error
		switch {
		case sel.ClientID == "":
			err = b.chooseClient(ctx)
		case sel.RequirementID == "":
			err = b.chooseRequirement(ctx)
		default:
			err = b.resumeScreen(ctx)
		}

		if err == nil {
			b.save(ctx)
			continue
		}

		if isExit(err) {
			b.logger.Info("exiting", zap.String("reason", "exit requested"))
			return nil
		}

		b.notify(err)
	}
}

func (b *browser) chooseClient(ctx context.Context) error {
	clients := b.session.Clients()
	if len(clients) == 0 {
		fmt.Fprintln(b.out, "There are no clients yet.")
		return errExit
	}

	items := append(clients.Names(), PromptExit)
	idx, choice, err := b.choose("Choose a client and press ENTER", items)
	if err != nil {
		return err
	}
	if choice == PromptExit {
		return errExit
	}

	return b.session.SelectClient(ctx, clients[idx].ID)
}

func (b *browser) chooseRequirement(ctx context.Context) error {
	sel := b.session.Selection()
	requirements := b.session.Requirements()

	items := make([]string, 0, len(requirements)+3)
	for _, r := range requirements {
		items = append(items, r.Name())
	}
	if len(requirements) == 0 {
		fmt.Fprintln(b.out, "No requirements loaded for this client.")
		items = append(items, PromptReload)
	}
	items = append(items, PromptBack, PromptExit)

	idx, choice, err := b.choose("Choose a requirement and press ENTER", items)
	if err != nil {
		return err
	}

	switch {
	case choice == PromptExit:
		return errExit
	case choice == PromptBack:
		b.session.Clear()
		return nil
	case choice == PromptReload && len(requirements) == 0:
		return b.session.SelectClient(ctx, sel.ClientID)
	}

	return b.session.SelectRequirement(ctx, requirements[idx].ID)
}

func (b *browser) resumeScreen(ctx context.Context) error {
	var extra []filtering.Filter
	if b.filename != "" {
		extra = append(extra, filtering.NewByFilename(b.filename))
	}

	resumes, err := b.session.Resumes(ctx, extra...)
	if err != nil {
		return err
	}

	fmt.Fprintln(b.out, selectionLine(b.session.Selection(), b.session.Clients(), b.session.Requirements()))
	fmt.Fprintln(b.out, filterLine(filtering.Describe(b.session.Filters(extra...)), b.session.Statuses()))
	if err := renderResumes(b.out, resumes); err != nil {
		return err
	}

	actions := []string{PromptSetStatus, PromptFilterStatus, PromptFilterFilename, PromptSortNewest, PromptSortOldest}
	if b.questioner != nil {
		actions = append(actions, PromptRequirementQuestions, PromptResumeQuestions)
	}
	actions = append(actions, PromptReload, PromptChangeRequirement, PromptChangeClient, PromptLogout, PromptExit)

	_, action, err := b.choose(fmt.Sprintf("%d of %d résumés. What next?", len(resumes), len(b.session.AllResumes())), actions)
	if err != nil {
		return err
	}

	return b.handleAction(ctx, action, resumes)
}

func (b *browser) handleAction(ctx context.Context, action string, resumes recruit.Resumes) error {
	sel := b.session.Selection()

	switch action {
	case PromptSetStatus:
		return b.setStatus(ctx, resumes)
	case PromptFilterStatus:
		return b.filterStatus()
	case PromptFilterFilename:
		prompt := promptui.Prompt{Label: "Filename contains (empty to clear)", Default: b.filename}
		value, err := prompt.Run()
		if err != nil {
			return err
		}
		b.filename = strings.TrimSpace(value)
		return nil
	case PromptSortNewest:
		return b.session.Sort(workflow.Descending)
	case PromptSortOldest:
		return b.session.Sort(workflow.Ascending)
	case PromptRequirementQuestions:
		requirement, ok := b.session.SelectedRequirement()
		if !ok {
			return workflow.ErrUnknownRequirement
		}
		count, err := b.askCount()
		if err != nil {
			return err
		}
		pairs, err := requirementQuestions(ctx, b.backend, b.questioner, requirement, count)
		if err != nil {
			return err
		}
		renderQuestions(b.out, pairs)
		return nil
	case PromptResumeQuestions:
		resume, ok, err := b.chooseResume(resumes)
		if err != nil || !ok {
			return err
		}
		count, err := b.askCount()
		if err != nil {
			return err
		}
		pairs, err := resumeQuestions(ctx, b.backend, b.questioner, resume, count)
		if err != nil {
			return err
		}
		renderQuestions(b.out, pairs)
		return nil
	case PromptReload:
		return b.session.SelectRequirement(ctx, sel.RequirementID)
	case PromptChangeRequirement:
		b.filename = ""
		return b.session.SelectClient(ctx, sel.ClientID)
	case PromptChangeClient:
		b.filename = ""
		b.session.Clear()
		return nil
	case PromptLogout:
		b.filename = ""
		return b.session.Logout(ctx)
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (b *browser) setStatus(ctx context.Context, resumes recruit.Resumes) error {
	resume, ok, err := b.chooseResume(resumes)
	if err != nil || !ok {
		return err
	}

	statuses := b.session.Statuses()
	items := make([]string, 0, len(statuses)+1)
	for _, s := range statuses {
		items = append(items, s.Name)
	}
	items = append(items, PromptBack)

	idx, choice, err := b.choose(fmt.Sprintf("New status for %s (now %s)", resume.Filename, resume.StatusName), items)
	if err != nil {
		return err
	}
	if choice == PromptBack {
		return nil
	}

	if err := b.session.UpdateStatus(ctx, resume.ID, statuses[idx].ID); err != nil {
		return err
	}

	fmt.Fprintf(b.out, "%s is now %s\n", resume.Filename, statuses[idx].Name)

	return nil
}

func (b *browser) filterStatus() error {
	statuses := b.session.Statuses()
	items := []string{PromptAllStatuses, PromptUnassigned}
	for _, s := range statuses {
		items = append(items, s.Name)
	}
	items = append(items, PromptBack)

	idx, choice, err := b.choose("Show résumés with status", items)
	if err != nil {
		return err
	}

	switch choice {
	case PromptBack:
		return nil
	case PromptAllStatuses:
		return b.session.SelectStatusFilter("")
	case PromptUnassigned:
		return b.session.SelectStatusFilter(filtering.Unassigned)
	}

	return b.session.SelectStatusFilter(statuses[idx-2].ID)
}

func (b *browser) chooseResume(resumes recruit.Resumes) (recruit.Resume, bool, error) {
	if len(resumes) == 0 {
		fmt.Fprintln(b.out, "No résumés to choose from.")
		return recruit.Resume{}, false, nil
	}

	items := make([]string, 0, len(resumes)+1)
	for _, r := range resumes {
		items = append(items, resumeLabel(r))
	}
	items = append(items, PromptBack)

	idx, choice, err := b.choose("Choose a résumé and press ENTER", items)
	if err != nil || choice == PromptBack {
		return recruit.Resume{}, false, err
	}

	return resumes[idx], true, nil
}

func (b *browser) askCount() (int, error) {
	prompt := promptui.Prompt{
		Label:    fmt.Sprintf("Number of questions (%d-%d)", ai.MinQuestions, ai.MaxQuestions),
		Default:  strconv.Itoa(ai.DefaultQuestions),
		Validate: validateCount,
	}

	value, err := prompt.Run()
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(strings.TrimSpace(value))
}

func validateCount(input string) error {
	count, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return errors.New("enter a number")
	}
	return ai.ValidateCount(count)
}

// option is one line of a select prompt. promptui resolves the chosen line to the first
// item equal to it, so pos keeps options with the same label apart.
type option struct {
	Label string
	pos   int
}

func options(labels []string) []option {
	opts := make([]option, len(labels))
	for i, label := range labels {
		opts[i] = option{Label: label, pos: i}
	}
	return opts
}

var selectTemplates = &promptui.SelectTemplates{
	Label:    "{{ . }}?",
	Active:   promptui.IconSelect + " {{ .Label | underline }}",
	Inactive: "  {{ .Label }}",
	Selected: promptui.IconGood + " {{ .Label | faint }}",
}

func (b *browser) choose(label string, items []string) (int, string, error) {
	opts := options(items)
	prompt := promptui.Select{
		Label:     label,
		Items:     opts,
		Templates: selectTemplates,
		Size:      promptListSize,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(opts[index].Label), strings.ToLower(strings.TrimSpace(input)))
		},
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return 0, "", err
	}

	return idx, opts[idx].Label, nil
}

func (b *browser) save(ctx context.Context) {
	if err := b.session.Save(ctx); err != nil {
		b.logger.Warn("saving session", zap.Error(err))
	}
}

// notify tells the user an action failed. Superseded results need no notice.
func (b *browser) notify(err error) {
	msg := workflow.UserMessage(err)
	if msg == "" {
		b.logger.Debug("action superseded", zap.Error(err))
		return
	}

	b.logger.Warn("action failed", zap.Error(err))
	fmt.Fprintf(b.out, "! %s\n", msg)
}

func isExit(err error) bool {
	return errors.Is(err, errExit) ||
		errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrEOF) ||
		errors.Is(err, context.Canceled)
}
