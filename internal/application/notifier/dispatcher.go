package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sondeo-mx/sondeo-api/internal/domain/entities"
	"github.com/sondeo-mx/sondeo-api/internal/infrastructure/metrics"
)

// maxBodyLength es el largo máximo del cuerpo que acepta la plantilla
const maxBodyLength = 60

// Deliverer es la interfaz de entrega externa (proveedor de mensajería
// templada)
type Deliverer interface {
	SendTemplate(ctx context.Context, phone, template, languageCode string, params []string) error
}

// NotificationStore persiste el registro interno de notificación
type NotificationStore interface {
	CreateNotification(notification *entities.Notification) error
}

// Alert es un evento listo para despachar: notificación interna más envío
// de plantilla a cada teléfono destino (ya deduplicados y normalizados)
type Alert struct {
	TenantID      string
	Type          string
	Title         string
	Message       string
	Meta          entities.JSONMap
	Phones        []string
	RecipientName string
}

// Dispatcher despacha alertas. Cada responsabilidad (registro interno,
// envío por teléfono) va en su propia frontera de falla: un rechazo del
// proveedor para un destino no frena a los demás ni al flujo que disparó
// la alerta.
type Dispatcher struct {
	delivery     Deliverer
	store        NotificationStore
	log          *logrus.Logger
	templateName string
	languageCode string
	sendTimeout  time.Duration
}

// NewDispatcher crea el despachador con la plantilla y el idioma fijos
// del contrato con el proveedor
func NewDispatcher(delivery Deliverer, store NotificationStore, log *logrus.Logger, templateName, languageCode string) *Dispatcher {
	return &Dispatcher{
		delivery:     delivery,
		store:        store,
		log:          log,
		templateName: templateName,
		languageCode: languageCode,
		sendTimeout:  15 * time.Second,
	}
}

// Dispatch procesa una alerta completa: escribe la notificación interna y
// envía la plantilla a cada destino en paralelo. Siempre intenta ambas
// cosas; las fallas se registran y se cuentan, no se propagan.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Alert) {
	d.createInternalNotification(alert)
	d.SendTemplates(ctx, alert.Phones, alert.RecipientName, alert.Title, alert.Message)
}

func (d *Dispatcher) createInternalNotification(alert Alert) {
	notification := &entities.Notification{
		ID:        uuid.NewString(),
		TenantID:  alert.TenantID,
		Type:      alert.Type,
		Title:     alert.Title,
		Message:   alert.Message,
		Meta:      alert.Meta,
		CreatedAt: time.Now(),
	}

	if err := d.store.CreateNotification(notification); err != nil {
		// Falla aislada: el envío externo sigue su curso
		d.log.WithError(err).WithFields(logrus.Fields{
			"tenant_id": alert.TenantID,
			"type":      alert.Type,
		}).Error("no se pudo crear la notificación interna")
		return
	}
	metrics.NotificationsCreated.WithLabelValues(alert.Type).Inc()
}

// SendTemplates envía la plantilla a cada teléfono en paralelo, cada envío
// dentro de su propia frontera de falla. Los parámetros son posicionales:
// nombre del destinatario, encabezado corto y cuerpo truncado.
func (d *Dispatcher) SendTemplates(ctx context.Context, phones []string, recipientName, headline, body string) {
	if len(phones) == 0 {
		return
	}

	params := []string{
		recipientName,
		headline,
		TruncateBody(body),
	}

	var wg sync.WaitGroup
	for _, phone := range phones {
		wg.Add(1)
		go func(phone string) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
			defer cancel()

			if err := d.delivery.SendTemplate(sendCtx, phone, d.templateName, d.languageCode, params); err != nil {
				metrics.DispatchTotal.WithLabelValues("error").Inc()
				// Contexto suficiente para reintentar a mano
				d.log.WithError(err).WithFields(logrus.Fields{
					"phone":    phone,
					"template": d.templateName,
					"headline": headline,
				}).Error("falló el envío de plantilla WhatsApp")
				return
			}
			metrics.DispatchTotal.WithLabelValues("ok").Inc()
		}(phone)
	}
	wg.Wait()
}

// TruncateBody corta el cuerpo al largo máximo que acepta la plantilla
func TruncateBody(body string) string {
	runes := []rune(body)
	if len(runes) <= maxBodyLength {
		return body
	}
	return string(runes[:maxBodyLength-3]) + "..."
}
