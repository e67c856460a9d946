package dashboard

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/notexe/reminder-dash/internal/reminder"
)

// Notification messages, one per outcome.
const (
	MsgCreated        = "Reminder created successfully!"
	MsgCreateFailed   = "Failed to create reminder."
	MsgUpdated        = "Reminder updated successfully!"
	MsgUpdateFailed   = "Failed to update reminder."
	MsgDeleted        = "Reminder deleted."
	MsgDeleteFailed   = "Failed to delete reminder."
	MsgCompleted      = "Reminder marked as complete!"
	MsgCompleteFailed = "Failed to update status."
)

// Service is the remote reminder service as the dashboard uses it.
// *api.Client satisfies it.
type Service interface {
	List(ctx context.Context, q reminder.Query) (*reminder.Page, error)
	Get(ctx context.Context, id int64) (*reminder.Reminder, error)
	Create(ctx context.Context, d reminder.Draft) (*reminder.Reminder, error)
	Update(ctx context.Context, id int64, d reminder.Draft) (*reminder.Reminder, error)
	Delete(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64) (*reminder.Reminder, error)
}

// Effects is what a mutation may do to the surrounding state.
type Effects interface {
	// Reject keeps form f open and records the validation errors.
	Reject(f Form, d reminder.Draft, errs reminder.FieldErrors)
	// CloseForm closes form f after a successful mutation.
	CloseForm(f Form)
	// Notify fills the notification slot.
	Notify(sev Severity, msg string)
	// Refresh refetches the current page.
	Refresh()
	// Patch replaces one reminder in the current page.
	Patch(r reminder.Reminder)
}

// Coordinator runs create, update, delete and complete against the
// service and applies the outcome through Effects. Every call that
// reaches the service produces exactly one notification.
type Coordinator struct {
	svc      Service
	validate *reminder.Validator
	fx       Effects
	log      logrus.FieldLogger
}

// NewCoordinator wires a coordinator. log may be nil.
func NewCoordinator(svc Service, v *reminder.Validator, fx Effects, log logrus.FieldLogger) *Coordinator {
	if log == nil {
		log = discardLogger()
	}
	return &Coordinator{
		svc:      svc,
		validate: v,
		fx:       fx,
		log:      log.WithField("component", "coordinator"),
	}
}

// Create validates d and sends it. Validation failures return
// reminder.FieldErrors without calling the service.
func (co *Coordinator) Create(ctx context.Context, d reminder.Draft) error {
	if err := co.check(FormAdd, d, "title", "dueDate"); err != nil {
		return err
	}

	created, err := co.svc.Create(ctx, d.Normalize())
	if err != nil {
		co.log.WithError(err).Warn("create failed")
		co.fx.Notify(SeverityError, MsgCreateFailed)
		return err
	}

	co.log.WithField("id", created.ID).Info("reminder created")
	co.fx.CloseForm(FormAdd)
	co.fx.Notify(SeveritySuccess, MsgCreated)
	co.fx.Refresh()
	return nil
}

// Update validates d and replaces reminder id. The edit form reports a
// past due date ahead of a blank title.
func (co *Coordinator) Update(ctx context.Context, id int64, d reminder.Draft) error {
	if err := co.check(FormEdit, d, "dueDate", "title"); err != nil {
		return err
	}

	if _, err := co.svc.Update(ctx, id, d.Normalize()); err != nil {
		co.log.WithError(err).WithField("id", id).Warn("update failed")
		co.fx.Notify(SeverityError, MsgUpdateFailed)
		return err
	}

	co.log.WithField("id", id).Info("reminder updated")
	co.fx.CloseForm(FormEdit)
	co.fx.Notify(SeveritySuccess, MsgUpdated)
	co.fx.Refresh()
	return nil
}

// Delete removes reminder id. On failure the confirmation stays open.
func (co *Coordinator) Delete(ctx context.Context, id int64) error {
	if err := co.svc.Delete(ctx, id); err != nil {
		co.log.WithError(err).WithField("id", id).Warn("delete failed")
		co.fx.Notify(SeverityError, MsgDeleteFailed)
		return err
	}

	co.log.WithField("id", id).Info("reminder deleted")
	co.fx.CloseForm(FormDelete)
	co.fx.Notify(SeverityWarning, MsgDeleted)
	co.fx.Refresh()
	return nil
}

// Complete marks reminder id as completed and patches the current page
// with the server's copy instead of refetching.
func (co *Coordinator) Complete(ctx context.Context, id int64) error {
	updated, err := co.svc.Complete(ctx, id)
	if err != nil {
		co.log.WithError(err).WithField("id", id).Warn("complete failed")
		co.fx.Notify(SeverityError, MsgCompleteFailed)
		return err
	}

	co.log.WithField("id", id).Info("reminder completed")
	co.fx.Patch(*updated)
	co.fx.Notify(SeveritySuccess, MsgCompleted)
	return nil
}

func (co *Coordinator) check(f Form, d reminder.Draft, order ...string) error {
	err := co.validate.Draft(d)
	if err == nil {
		return nil
	}

	var fe reminder.FieldErrors
	if errors.As(err, &fe) {
		fe = fe.Sorted(order...)
		co.fx.Reject(f, d, fe)
		return fe
	}
	return err
}
