package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	stdlog "log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/darasahq/darasa/apps/api/echo"
	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/catalog"
	"github.com/darasahq/darasa/core/classroom"
	"github.com/darasahq/darasa/core/lecture"
	"github.com/darasahq/darasa/core/user"
	emailsvc "github.com/darasahq/darasa/services/email"
	logsvc "github.com/darasahq/darasa/services/logger"
	dummydb "github.com/darasahq/darasa/storage/database/dummy"
)

var (
	conf       *core.Config
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator

	usrRepo       user.Repository
	catalogRepo   catalog.Repository
	classroomRepo classroom.Repository
	lectureRepo   lecture.Repository

	usrSvc       user.ServiceInterface
	catalogSvc   catalog.ServiceInterface
	classroomSvc classroom.ServiceInterface
	lectureSvc   lecture.ServiceInterface

	errMissingToken     = httpErr{Error: "missing or malformed jwt"}
	errNotAuthed        = httpErr{Error: "not authenticated"}
	errNoActionAccess   = httpErr{Error: "no access to action"}
	errNoResourceAcc    = httpErr{Error: "no access to resource"}
	errPermissionDenied = httpErr{Error: "permission denied"}
)

func TestMain(m *testing.M) {
	var err error
	if conf, err = core.NewConfig(core.Getwd()); err != nil {
		fmt.Printf("core.NewConfig(): %v", err)
		os.Exit(1)
	}
	conf.Debug = false
	conf.TestMode = true

	_en := en.New()
	var found bool
	if translator, found = ut.New(_en, _en).GetTranslator("en"); !found {
		fmt.Println("en translator not found")
		os.Exit(1)
	}
	validate = validator.New()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)
	classroom.RegisterValidators(validate, translator)

	logger = logsvc.NewRollbarLogger(stdlog.New(os.Stdout, "TEST : ", stdlog.LstdFlags), conf)

	os.Exit(m.Run())
}

// setup builds a fresh in-memory backend and a Server over it;
// the repos and services globals point at the new backend.
func setup(t *testing.T) echoapi.Server {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	catalogRepo = dummydb.NewCatalogRepository(db)
	classroomRepo = dummydb.NewClassroomRepository(db)
	lectureRepo = dummydb.NewLectureRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc = user.NewService(conf, usrRepo, mailSvc)
	catalogSvc = catalog.NewService(catalogRepo)
	classroomSvc = classroom.NewService(conf, classroomRepo, mailSvc)
	lectureSvc = lecture.NewService(lectureRepo)

	emailsvc.ClearSentMessages()

	return echoapi.NewServer(&echoapi.Options{
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		UserSvc:        usrSvc,
		CatalogSvc:     catalogSvc,
		ClassroomSvc:   classroomSvc,
		LectureSvc:     lectureSvc,
		SignalShutdown: func() {},
	})
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()

	claims := echoapi.GetUserClaims(usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()

	if objs == nil {
		objs = []interface{}{}
	}
	return marchallObj(t, echoapi.ListResponse{Data: objs, Total: len(objs)})
}

func marchallDetail(t *testing.T, obj interface{}) []byte {
	t.Helper()
	return marchallObj(t, echoapi.DetailResponse{Data: obj})
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
