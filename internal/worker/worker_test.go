package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"

	"vendimax/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushed struct {
	key  string
	data []byte
}

func newTestDispatcher() (*Dispatcher, *[]pushed) {
	var out []pushed
	d := NewDispatcher(nil)
	d.push = func(_ context.Context, key string, data []byte) error {
		out = append(out, pushed{key: key, data: data})
		return nil
	}
	return d, &out
}

type handlerFunc func(ctx context.Context, raw json.RawMessage) error

func (f handlerFunc) Process(ctx context.Context, raw json.RawMessage) error { return f(ctx, raw) }

func TestDispatch_ReencolaYLuegoDLQ(t *testing.T) {
	d, out := newTestDispatcher()
	calls := 0
	d.Register(JobEmail, handlerFunc(func(context.Context, json.RawMessage) error {
		calls++
		return errors.New("smtp caido")
	}))

	job := Job{Type: JobEmail, Payload: json.RawMessage(`{}`)}
	d.dispatch(context.Background(), QueueEmail, job)
	require.Len(t, *out, 1)
	assert.Equal(t, QueueEmail, (*out)[0].key)

	var requeued Job
	require.NoError(t, json.Unmarshal((*out)[0].data, &requeued))
	assert.Equal(t, 1, requeued.Attempts)

	requeued.Attempts = MaxAttempts - 1
	d.dispatch(context.Background(), QueueEmail, requeued)
	require.Len(t, *out, 2)
	assert.Equal(t, DLQPrefix+QueueEmail, (*out)[1].key)

	var entry DLQEntry
	require.NoError(t, json.Unmarshal((*out)[1].data, &entry))
	assert.Equal(t, "smtp caido", entry.Reason)
	assert.Equal(t, MaxAttempts, entry.Attempts)
	assert.Equal(t, 2, calls)
}

func TestDispatch_SinHandlerVaADLQ(t *testing.T) {
	d, out := newTestDispatcher()
	d.dispatch(context.Background(), QueueAlertasStock, Job{Type: "desconocido"})
	require.Len(t, *out, 1)
	assert.Equal(t, DLQPrefix+QueueAlertasStock, (*out)[0].key)
}

func TestEnqueue_SinRedisEjecutaEnLinea(t *testing.T) {
	d := NewDispatcher(nil)
	var wg sync.WaitGroup
	wg.Add(1)
	var got AlertaStockPayload
	d.Register(JobAlertaStock, handlerFunc(func(_ context.Context, raw json.RawMessage) error {
		defer wg.Done()
		return json.Unmarshal(raw, &got)
	}))

	require.NoError(t, d.EnqueueAlertaStock(context.Background(), AlertaStockPayload{NumeroTicket: 7}))
	wg.Wait()
	assert.Equal(t, 7, got.NumeroTicket)
}

type fakeEmailer struct{ sent []EmailJobPayload }

func (f *fakeEmailer) EnqueueEmail(_ context.Context, p EmailJobPayload) error {
	f.sent = append(f.sent, p)
	return nil
}

func TestAlertaStockWorker(t *testing.T) {
	em := &fakeEmailer{}
	w := NewAlertaStockWorker(em, "deposito@example.com")
	raw, _ := json.Marshal(AlertaStockPayload{
		NumeroTicket: 12,
		Productos:    []ProductoBajoStock{{Nombre: "Yerba 1kg", StockActual: 2, StockMinimo: 5}},
	})

	require.NoError(t, w.Process(context.Background(), raw))
	require.Len(t, em.sent, 1)
	assert.Equal(t, []string{"deposito@example.com"}, em.sent[0].To)
	assert.Contains(t, em.sent[0].Subject, "#12")
	assert.Contains(t, em.sent[0].Body, "Yerba 1kg: 2 (minimo 5)")

	silencioso := NewAlertaStockWorker(em, "")
	require.NoError(t, silencioso.Process(context.Background(), raw))
	assert.Len(t, em.sent, 1)
}

func TestReporteCierreWorker_GeneraPDFYEncolaMail(t *testing.T) {
	dir := t.TempDir()
	em := &fakeEmailer{}
	w := NewReporteCierreWorker(em, dir, "admin@example.com")
	dif := decimal.NewFromInt(-60)
	raw, _ := json.Marshal(ReporteCierrePayload{
		Sesion: dto.SesionCajaResponse{ID: "s1", Diferencia: &dif, RequiereAutorizacion: true},
	})

	require.NoError(t, w.Process(context.Background(), raw))
	require.Len(t, em.sent, 1)
	assert.Contains(t, em.sent[0].Subject, "REQUIERE AUTORIZACION")
	assert.Contains(t, em.sent[0].Body, "-60.00")
	_, err := os.Stat(em.sent[0].AttachPath)
	assert.NoError(t, err)
}

type fakeMailer struct {
	enabled bool
	err     error
	calls   int
}

func (m *fakeMailer) Enabled() bool { return m.enabled }

func (m *fakeMailer) Send(_ []string, _, _, _ string) error {
	m.calls++
	return m.err
}

func TestEmailWorker(t *testing.T) {
	raw, _ := json.Marshal(EmailJobPayload{To: []string{"a@example.com"}, Subject: "x"})

	off := &fakeMailer{}
	require.NoError(t, NewEmailWorker(off).Process(context.Background(), raw))
	assert.Zero(t, off.calls)

	failing := &fakeMailer{enabled: true, err: errors.New("timeout")}
	assert.Error(t, NewEmailWorker(failing).Process(context.Background(), raw))
	assert.Equal(t, 1, failing.calls)

	assert.NoError(t, NewEmailWorker(off).Process(context.Background(), json.RawMessage(`{bad`)))
}
