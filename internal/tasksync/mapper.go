package tasksync

import (
	"github.com/jomei/notionapi"

	"github.com/dvloznov/ledger-reconciler/internal/task"
)

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: content},
		},
	}
}

// TaskToNotionProperties converts a task into the properties of one page in
// the tasks database. The task ID goes into the title property; it is the
// idempotency key for the sync.
func TaskToNotionProperties(t task.Task) notionapi.Properties {
	props := notionapi.Properties{}

	var todo *task.ToDoTask
	switch v := t.(type) {
	case *task.TransferTask:
		todo = &v.ToDoTask
		props["Kind"] = notionapi.SelectProperty{Select: notionapi.Option{Name: "Transfer"}}
		props["Amount"] = notionapi.RichTextProperty{RichText: richText(v.Amount.String())}
		props["Source"] = notionapi.SelectProperty{Select: notionapi.Option{Name: v.SourceAccount.Name}}
		props["Destination"] = notionapi.SelectProperty{Select: notionapi.Option{Name: v.DestinationAccount.Name}}
		props["Bucket"] = notionapi.SelectProperty{Select: notionapi.Option{Name: v.BucketCode}}
		if v.Reference != "" {
			props["Reference"] = notionapi.RichTextProperty{RichText: richText(v.Reference)}
		}
	case *task.ToDoTask:
		todo = v
		props["Kind"] = notionapi.SelectProperty{Select: notionapi.Option{Name: "ToDo"}}
	default:
		return nil
	}

	props["Task ID"] = notionapi.TitleProperty{Title: richText(todo.ID.String())}
	props["Description"] = notionapi.RichTextProperty{RichText: richText(todo.Description)}
	props["System Generated"] = notionapi.CheckboxProperty{Checkbox: todo.SystemGenerated}
	return props
}

// extractTaskID pulls the task ID back out of a page's title property.
// Empty when the page was not created by this sync.
func extractTaskID(page notionapi.Page) string {
	prop, ok := page.Properties["Task ID"]
	if !ok {
		return ""
	}
	title, ok := prop.(*notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		return ""
	}
	return title.Title[0].PlainText
}
