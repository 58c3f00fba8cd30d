package tests

import (
	"os"
	"testing"

	"github.com/go-playground/validator/v10"

	. "github.com/madrasah/darsplan/apps/api/echo"
	"github.com/madrasah/darsplan/core"
	"github.com/madrasah/darsplan/core/lesson"
	"github.com/madrasah/darsplan/core/session"
	"github.com/madrasah/darsplan/core/user"
	emailsvc "github.com/madrasah/darsplan/services/email"
	inmemdb "github.com/madrasah/darsplan/storage/database/inmem"
)

func TestMain(m *testing.M) {
	core.Conf.Debug = false
	core.Conf.TestMode = true

	// set up DB & repos
	db = inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)
	lsnRepo = inmemdb.NewLessonRepository(db)

	// set up services
	logger := nopLogger{}
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc = user.NewService(usrRepo, mailSvc, core.Conf, logger)

	changes = lesson.NewChangeBroker()
	lsnSvc := lesson.NewService(lsnRepo, changes, logger)

	broker := session.NewBroker()
	sessions = session.NewStore(broker)

	google = &googleVerifierStub{idents: make(map[string]user.Identity)}

	// set up validators & templates
	validate := validator.New()
	uni := core.NewTranslator()
	core.InitValidators(validate, uni)
	user.InitValidators(validate, uni)
	lesson.InitValidators(validate, uni)
	core.ParseEmailTemplates(logger)
	user.LoadCommonPasswords(logger)

	// set up server
	app = NewServer(
		ServerDeps{
			Conf:           core.Conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			LessonSvc:      lsnSvc,
			Sessions:       sessions,
			Broker:         broker,
			Changes:        changes,
			Google:         google,
			Validate:       validate,
			Translators:    uni,
			DisableReqLogs: true,
		},
	)

	os.Exit(m.Run())
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                        {}
func (nopLogger) Debug(string, ...interface{})       {}
func (nopLogger) Info(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})        {}
func (nopLogger) Error(string, ...interface{})       {}
func (nopLogger) Fatal(msg string, _ ...interface{}) { panic(msg) }
