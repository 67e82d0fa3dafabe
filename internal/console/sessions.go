package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"quizforge-backend/internal/authoring"
	"quizforge-backend/internal/profile"
)

// editQuiz runs the question editor until the quiz is saved or discarded.
func (c *console) editQuiz(ctx context.Context, ed *authoring.Editor) error {
	printEditorHelp(c.out)
	printEditor(c.out, ed.Snapshot())

	for {
		args, err := c.prompt("\nquiz> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if len(args) == 0 {
			continue
		}
		rest := strings.TrimSpace(strings.Join(args[1:], " "))

		switch strings.ToLower(args[0]) {
		case "help":
			printEditorHelp(c.out)
		case "show":
			printEditor(c.out, ed.Snapshot())
		case "title":
			c.alertErr(ed.SetTitle(rest))
		case "q", "question":
			c.alertErr(ed.UpdateQuestionField(authoring.FieldQuestion, rest))
		case "opt", "option":
			n, ok := parseOneBased(args, 1, 4)
			if !ok {
				fmt.Fprintln(c.out, "usage: opt <1-4> <text>")
				continue
			}
			c.alertErr(ed.UpdateOption(n, strings.TrimSpace(strings.Join(args[2:], " "))))
		case "answer":
			n, ok := parseOneBased(args, 1, 4)
			if !ok {
				fmt.Fprintln(c.out, "usage: answer <1-4>")
				continue
			}
			c.alertErr(ed.UpdateQuestionField(authoring.FieldCorrectAnswer, strconv.Itoa(n)))
		case "add":
			ed.AddQuestion()
			printEditor(c.out, ed.Snapshot())
		case "remove":
			idx := ed.Snapshot().Current
			if len(args) > 1 {
				n, ok := parseOneBased(args, 1, len(ed.Snapshot().Questions))
				if !ok {
					fmt.Fprintln(c.out, "usage: remove [question number]")
					continue
				}
				idx = n
			}
			if !ed.RemoveQuestion(idx) {
				fmt.Fprintln(c.out, "a quiz needs at least one question")
				continue
			}
			printEditor(c.out, ed.Snapshot())
		case "next":
			ed.Navigate(authoring.Next)
			printEditor(c.out, ed.Snapshot())
		case "prev":
			ed.Navigate(authoring.Prev)
			printEditor(c.out, ed.Snapshot())
		case "goto":
			n, ok := parseOneBased(args, 1, len(ed.Snapshot().Questions))
			if !ok || !ed.GoTo(n) {
				fmt.Fprintln(c.out, "usage: goto <question number>")
				continue
			}
			printEditor(c.out, ed.Snapshot())
		case "preview":
			p := ed.Preview()
			fmt.Fprintf(c.out, "%d question(s), %d with a prompt\n", p.Questions, p.WithPrompt)
		case "save":
			exit, err := ed.Save(ctx)
			if err != nil {
				c.alertErr(err)
				continue
			}
			c.alert(exit.Message)
			fmt.Fprintf(c.out, "-> %s (quiz %s)\n", exit.Location, exit.QuizID)
			c.list = nil
			return nil
		case "discard", "back":
			fmt.Fprintln(c.out, "draft discarded")
			return nil
		default:
			fmt.Fprintln(c.out, "unknown command. type 'help' for usage.")
		}
	}
}

// editProfile runs the student profile form for the signed-in user.
func (c *console) editProfile(ctx context.Context) error {
	session, err := c.api.Session(ctx)
	if err != nil {
		return err
	}
	form, err := profile.Load(ctx, c.api, session, profile.WithLogger(c.log))
	if err != nil {
		return err
	}
	printProfileHelp(c.out)
	printProfile(c.out, form)

	for {
		args, err := c.prompt("\nprofile> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if len(args) == 0 {
			continue
		}

		switch strings.ToLower(args[0]) {
		case "help":
			printProfileHelp(c.out)
		case "show":
			printProfile(c.out, form)
		case "edit":
			form.StartEditing()
			printProfile(c.out, form)
		case "set":
			if len(args) < 2 {
				fmt.Fprintln(c.out, "usage: set <field> <value>")
				continue
			}
			c.alertErr(form.Set(args[1], strings.TrimSpace(strings.Join(args[2:], " "))))
		case "cancel":
			form.Cancel()
			printProfile(c.out, form)
		case "save":
			if err := form.Save(ctx); err != nil {
				c.alertErr(err)
				continue
			}
			c.alert("Profile saved")
			printProfile(c.out, form)
		case "back":
			return nil
		default:
			fmt.Fprintln(c.out, "unknown command. type 'help' for usage.")
		}
	}
}
