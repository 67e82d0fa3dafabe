package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"quizforge-backend/internal/authoring"
	"quizforge-backend/internal/listing"
	"quizforge-backend/internal/profile"
)

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  whoami")
	fmt.Fprintln(out, "  quizzes")
	fmt.Fprintln(out, "  toggle <quiz_id>")
	fmt.Fprintln(out, "  new")
	fmt.Fprintln(out, "  edit <quiz_id>")
	fmt.Fprintln(out, "  profile")
	fmt.Fprintln(out, "  exit")
}

func printEditorHelp(out io.Writer) {
	fmt.Fprintln(out, "Quiz editor:")
	fmt.Fprintln(out, "  show | preview")
	fmt.Fprintln(out, "  title <text>")
	fmt.Fprintln(out, "  q <prompt>")
	fmt.Fprintln(out, "  opt <1-4> <text>")
	fmt.Fprintln(out, "  answer <1-4>")
	fmt.Fprintln(out, "  add | remove [n]")
	fmt.Fprintln(out, "  next | prev | goto <n>")
	fmt.Fprintln(out, "  save | discard")
}

func printProfileHelp(out io.Writer) {
	fmt.Fprintln(out, "Student profile:")
	fmt.Fprintln(out, "  show")
	fmt.Fprintln(out, "  edit")
	fmt.Fprintf(out, "  set <field> <value>   fields: %s\n", strings.Join(profile.FieldNames(), ", "))
	fmt.Fprintln(out, "  save | cancel")
	fmt.Fprintln(out, "  back")
}

func printRows(out io.Writer, v *listing.View) {
	rows := v.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No quizzes yet.")
		return
	}
	fmt.Fprintln(out, "Quizzes:")
	for _, r := range rows {
		status := "draft"
		if r.Published {
			status = "published"
		}
		fmt.Fprintf(out, "  %s  %-30s %3d question(s)  %-9s  %s  [%s]\n",
			r.ID, r.Title, r.QuestionCount, status, r.CreatedAt.Format("2006-01-02"), v.ActionLabel(r.ID))
	}
}

func printEditor(out io.Writer, view authoring.View) {
	mode := "new quiz"
	if view.QuizID != "" {
		mode = "editing " + view.QuizID
	}
	fmt.Fprintf(out, "%s (%s)\n", view.Title, mode)

	marks := make([]string, len(view.Questions))
	for i := range view.Questions {
		marks[i] = strconv.Itoa(i + 1)
		if i == view.Current {
			marks[i] = "[" + marks[i] + "]"
		}
	}
	fmt.Fprintf(out, "Questions: %s\n", strings.Join(marks, " "))

	q := view.Questions[view.Current]
	fmt.Fprintf(out, "Q%d: %s\n", view.Current+1, q.Question)
	for i, opt := range q.Options {
		marker := " "
		if i == q.CorrectAnswer {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %d. %s\n", marker, i+1, opt)
	}
}

func printProfile(out io.Writer, f *profile.Form) {
	v := f.Values()
	fmt.Fprintf(out, "Profile (%s)\n", f.State())
	fmt.Fprintf(out, "  email:           %s\n", f.Email())
	fmt.Fprintf(out, "  name:            %s\n", v.Name)
	fmt.Fprintf(out, "  roll_number:     %s\n", v.RollNumber)
	fmt.Fprintf(out, "  university:      %s\n", v.University)
	fmt.Fprintf(out, "  program:         %s\n", v.Program)
	fmt.Fprintf(out, "  current_year:    %s\n", v.CurrentYear)
	fmt.Fprintf(out, "  graduation_year: %s\n", v.GraduationYear)
}

// parseOneBased reads args[index] as a number in [1,limit] and returns it
// zero-based.
func parseOneBased(args []string, index, limit int) (int, bool) {
	if len(args) <= index {
		return 0, false
	}
	n, err := strconv.Atoi(args[index])
	if err != nil || n < 1 || n > limit {
		return 0, false
	}
	return n - 1, true
}

func promptYesNo(reader *bufio.Reader, out io.Writer, prompt string) (bool, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			if err != nil {
				return false, err
			}
			fmt.Fprintln(out, "Please answer yes or no.")
		}
	}
}
