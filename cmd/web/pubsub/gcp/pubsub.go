// Package gcp notifies sibling instances of fresh verification results over Google Cloud Pub/Sub, so each
// instance can warm its cache without repeating the DNS probes.
package gcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub"
	"github.com/mailvet/mailvet/cmd/web/mvhttp/handlers"
	"github.com/mailvet/mailvet/cmd/web/pubsub"
	"github.com/sirupsen/logrus"
)

const maxSubscribeRetries = 100

func NewPubSubSvc(logger logrus.FieldLogger, client *gcppubsub.Client, topicName string, options ...Option) *PubSubSvc {
	if logger == nil {
		logger = logrus.New()
	}

	svc := PubSubSvc{
		logger:    logger,
		client:    client,
		topicName: topicName,
	}

	for _, o := range options {
		o(&svc)
	}

	labels := svc.subscriptionLabels
	svc.subscriptionLabels = svc.subscriptionLabels[0:0]
	for _, l := range labels {
		if l == "" {
			continue
		}
		svc.subscriptionLabels = append(svc.subscriptionLabels, l)
	}

	return &svc
}

type NotifyFn func(ctx context.Context, notification pubsub.Notification)

type PubSubSvc struct {
	logger               logrus.FieldLogger
	client               *gcppubsub.Client
	topicName            string
	topic                *gcppubsub.Topic
	subscriptionLabels   []string
	subscriptionNumProcs int
}

func (svc *PubSubSvc) Close() error {
	if svc.client == nil {
		return errors.New("client not defined")
	}

	err := svc.client.Subscription(svc.getSubscriptionID()).Delete(context.Background())
	if err != nil {
		svc.logger.WithError(err).Warn("Failed to end and cleanup subscription")
	}

	err = svc.client.Close()
	if err != nil {
		svc.logger.WithError(err).Warn("Failed to close pub/sub client")
	}

	return err
}

func (svc *PubSubSvc) getSubscriptionID() string {
	return strings.Join(svc.subscriptionLabels, `-`)
}

func (svc *PubSubSvc) Publish(ctx context.Context, data pubsub.Data) error {
	logger := svc.logger.WithFields(logrus.Fields{
		handlers.RequestID.String(): ctx.Value(handlers.RequestID),
	})

	notification := pubsub.Notification{
		SenderID: svc.getSubscriptionID(),
		Data:     data,
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error":        err,
			"notification": notification,
		}).Error("Failed to marshal notification")
		return err
	}

	topic, err := svc.getTopic(ctx, svc.topicName)
	if err != nil {
		return err
	}

	pr := topic.Publish(ctx, &gcppubsub.Message{
		Data: payload,
	})

	<-pr.Ready()

	return nil
}

// getTopic returns the topic, after verifying it exists. Multiple calls to getTopic will return the same topic
func (svc *PubSubSvc) getTopic(ctx context.Context, topicName string) (*gcppubsub.Topic, error) {
	if svc.topic != nil {
		return svc.topic, nil
	}

	topic := svc.client.Topic(topicName)
	if ok, err := topic.Exists(ctx); !ok || err != nil {
		return nil, err
	}

	svc.topic = topic

	return svc.topic, nil
}

// Listen attaches a new unique subscriber to the topic for receiving notifications. Listen returns immediately
func (svc *PubSubSvc) Listen(ctx context.Context, fn NotifyFn) error {
	topic, err := svc.getTopic(ctx, svc.topicName)
	if err != nil {
		svc.logger.WithFields(logrus.Fields{
			"error": err,
			"topic": svc.topicName,
		}).Error("Topic not found for this project")
		return err
	}

	go svc.maintainSubscription(ctx, fn, topic)

	return nil
}

func (svc *PubSubSvc) maintainSubscription(ctx context.Context, fn NotifyFn, topic *gcppubsub.Topic) {
	subscriptionID := svc.getSubscriptionID()

	for retries := 0; retries < maxSubscribeRetries; retries++ {
		if ctx.Err() != nil {
			svc.logger.WithFields(logrus.Fields{
				"retries": retries,
				"ctx_err": ctx.Err(),
			}).Warn("Context canceled, giving up")
			return
		}

		subscription, err := svc.createSubscription(ctx, topic, subscriptionID)
		if err != nil {
			if !strings.Contains(err.Error(), "AlreadyExists") {
				svc.logger.WithFields(logrus.Fields{
					"error":           err.Error(),
					"subscription_id": subscriptionID,
				}).Error("Failed to setup subscription for this project")
				time.Sleep(time.Second * time.Duration(retries+1))
				continue
			}

			// The subscription survived a previous run, reattach to it.
			subscription = svc.client.Subscription(subscriptionID)
		}

		subscription.ReceiveSettings.NumGoroutines = svc.subscriptionNumProcs
		err = svc.listen(ctx, subscription, fn)
		if err != nil {
			svc.logger.WithFields(logrus.Fields{
				"error":   err,
				"retries": retries,
			}).Error("Error with pub/sub receiver")
			time.Sleep(time.Second * time.Duration(retries+1))
		}
	}

	svc.logger.Warn("Giving up on receiving notifications. We're in a broken state!")
}

func (svc *PubSubSvc) createSubscription(ctx context.Context, topic *gcppubsub.Topic, sid string) (*gcppubsub.Subscription, error) {
	return svc.client.CreateSubscription(
		ctx,
		sid,
		gcppubsub.SubscriptionConfig{
			Topic:               topic,
			AckDeadline:         time.Second * 600,
			RetainAckedMessages: false,
			ExpirationPolicy:    time.Hour * 25,
		},
	)
}

// listen listens on a subscription, blocking until the context ends or Receive fails
func (svc *PubSubSvc) listen(ctx context.Context, subscription Subscription, fn NotifyFn) error {
	if subscription == nil {
		return errors.New("invalid subscription")
	}

	if exists, err := subscription.Exists(ctx); !exists {
		svc.logger.WithField("subscription_id", subscription.ID()).Info("Subscription doesn't exist, unable to start receiver.")
		return err
	}

	svc.logger.WithField("subscription", subscription).Info("Starting receiver on subscription.")

	return subscription.Receive(ctx, func(ctx context.Context, message *gcppubsub.Message) {
		logger := svc.logger.WithField("msg_id", message.ID)

		var notification pubsub.Notification
		if err := json.Unmarshal(message.Data, &notification); err != nil {
			logger.WithFields(logrus.Fields{
				"error": err,
				"data":  string(message.Data),
			}).Warn("Unable to unmarshal notification")

			message.Nack()
			return
		}

		message.Ack()

		// Making sure we don't respond to our own publishing
		if sid := svc.getSubscriptionID(); notification.SenderID == sid {
			logger.WithField("sender_id", notification.SenderID).Debug("Ignoring notification sent by this instance.")
			return
		}

		fn(ctx, notification)
	})
}
