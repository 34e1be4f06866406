/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
LarkMQ Admin CLI - Topic administration from the command line.

COMMANDS:
=========

	topic            Manage topics (create, list, describe, delete, add-partitions)
	config           Manage entity configs (get, set-topic, set-client)
	metadata         Fetch topic metadata for client bootstrap
	brokers          List registered brokers
	watch            Stream config-change notifications
	health           Check admin API health

EXAMPLES:
=========

	# Create a topic
	larkmq-admin topic create orders --partitions 8 --replication-factor 3

	# Pin replicas manually
	larkmq-admin topic create audit --assignment "0:1:2,1:2:0"

	# Change a topic's retention
	larkmq-admin config set-topic orders retention.ms=86400000

	# Watch config changes as they happen
	larkmq-admin watch
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"larkmq/internal/banner"
	"larkmq/pkg/cli"
	"larkmq/pkg/client"
)

const defaultAddr = "http://localhost:9096"

var (
	serverAddr string
	timeout    time.Duration
)

func main() {
	root := &cobra.Command{
		Use:           "larkmq-admin",
		Short:         "LarkMQ topic administration",
		Long:          "Administer LarkMQ topics, configs and metadata over the admin REST API.",
		Version:       banner.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverAddr, "server", defaultAddr, "Admin API base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	root.AddCommand(
		topicCommand(),
		configCommand(),
		metadataCommand(),
		brokersCommand(),
		watchCommand(),
		healthCommand(),
	)

	if err := root.Execute(); err != nil {
		exitWithError(err)
	}
}

// exitWithError renders a failed command on stderr and exits. Failures
// with an obvious next step carry one.
func exitWithError(err error) {
	var apiErr *client.APIError
	var netErr *url.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		cli.ErrorWithHint(err.Error(), "larkmq-admin topic list shows what exists")
	case errors.As(err, &netErr):
		cli.ErrorWithSuggestion(fmt.Sprintf("cannot reach the admin API at %s: %v", serverAddr, netErr.Err),
			fmt.Sprintf("larkmq-admin --server %s health", serverAddr))
	default:
		cli.Error("%v", err)
	}
	os.Exit(1)
}

func newClient() *client.Client {
	return client.NewWithOptions(serverAddr, client.Options{Timeout: timeout})
}

func callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func topicCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topic",
		Short: "Manage topics",
	}

	var partitions, replicationFactor int
	var assignment string
	var configPairs []string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := parseConfigPairs(configPairs)
			if err != nil {
				return err
			}
			ctx, cancel := callCtx()
			defer cancel()
			err = newClient().CreateTopic(ctx, client.CreateTopicRequest{
				Name:              args[0],
				Partitions:        partitions,
				ReplicationFactor: replicationFactor,
				Assignment:        assignment,
				Config:            cfg,
			})
			if err != nil {
				return err
			}
			cli.Success("Created topic %s", args[0])
			return nil
		},
	}
	create.Flags().IntVarP(&partitions, "partitions", "p", 1, "Number of partitions")
	create.Flags().IntVarP(&replicationFactor, "replication-factor", "r", 1, "Replicas per partition")
	create.Flags().StringVar(&assignment, "assignment", "", "Manual assignment, e.g. \"0:1:2,1:2:0\"")
	create.Flags().StringArrayVar(&configPairs, "config", nil, "Topic config override key=value (repeatable)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx()
			defer cancel()
			topics, err := newClient().ListTopics(ctx)
			if err != nil {
				return err
			}
			if len(topics) == 0 {
				cli.Info("No topics")
				return nil
			}
			for _, name := range topics {
				fmt.Println(name)
			}
			return nil
		},
	}

	describe := &cobra.Command{
		Use:   "describe <name>",
		Short: "Show a topic's assignment and config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx()
			defer cancel()
			topic, err := newClient().DescribeTopic(ctx, args[0])
			if err != nil {
				return err
			}
			printTopic(topic)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Mark a topic for deletion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx()
			defer cancel()
			if err := newClient().DeleteTopic(ctx, args[0]); err != nil {
				return err
			}
			cli.Success("Topic %s marked for deletion", args[0])
			return nil
		},
	}

	var total int
	var growAssignment string
	addPartitions := &cobra.Command{
		Use:   "add-partitions <name>",
		Short: "Grow a topic's partition count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx()
			defer cancel()
			if err := newClient().AddPartitions(ctx, args[0], total, growAssignment); err != nil {
				return err
			}
			cli.Success("Topic %s grown to %d partitions", args[0], total)
			return nil
		},
	}
	addPartitions.Flags().IntVar(&total, "total", 0, "New total partition count")
	addPartitions.Flags().StringVar(&growAssignment, "assignment", "", "Manual assignment for the new partitions")
	addPartitions.MarkFlagRequired("total")

	cmd.AddCommand(create, list, describe, del, addPartitions)
	return cmd
}

func configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage entity configs",
	}

	get := &cobra.Command{
		Use:   "get <topics|clients> <name>",
		Short: "Show an entity's config overrides",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx()
			defer cancel()
			cfg, err := newClient().GetConfig(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if len(cfg) == 0 {
				cli.Info("No overrides for %s/%s", args[0], args[1])
				return nil
			}
			printConfig(cfg)
			return nil
		},
	}

	setTopic := &cobra.Command{
		Use:   "set-topic <name> <key=value>...",
		Short: "Replace a topic's config overrides",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := parseConfigPairs(args[1:])
			if err != nil {
				return err
			}
			ctx, cancel := callCtx()
			defer cancel()
			if err := newClient().SetTopicConfig(ctx, args[0], cfg); err != nil {
				return err
			}
			cli.Success("Updated config for topic %s", args[0])
			return nil
		},
	}

	setClient := &cobra.Command{
		Use:   "set-client <id> <key=value>...",
		Short: "Replace a client id's quota overrides",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := parseConfigPairs(args[1:])
			if err != nil {
				return err
			}
			ctx, cancel := callCtx()
			defer cancel()
			if err := newClient().SetClientConfig(ctx, args[0], cfg); err != nil {
				return err
			}
			cli.Success("Updated config for client %s", args[0])
			return nil
		},
	}

	cmd.AddCommand(get, setTopic, setClient)
	return cmd
}

func metadataCommand() *cobra.Command {
	var protocol string
	cmd := &cobra.Command{
		Use:   "metadata <topic>...",
		Short: "Fetch topic metadata for client bootstrap",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx()
			defer cancel()
			results, err := newClient().FetchMetadata(ctx, args, protocol)
			if err != nil {
				return err
			}
			for _, tm := range results {
				printTopicMetadata(tm)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&protocol, "protocol", "", "Listener protocol (PLAINTEXT or SSL)")
	return cmd
}

func brokersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "brokers",
		Short: "List registered brokers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx()
			defer cancel()
			brokers, err := newClient().Brokers(ctx)
			if err != nil {
				return err
			}
			if len(brokers) == 0 {
				cli.Warning("No brokers registered")
				return nil
			}
			for _, b := range brokers {
				protocols := make([]string, 0, len(b.Endpoints))
				for p := range b.Endpoints {
					protocols = append(protocols, p)
				}
				sort.Strings(protocols)
				fmt.Printf("%s broker %d\n", cli.IconDot, b.ID)
				for _, p := range protocols {
					ep := b.Endpoints[p]
					cli.KeyValue(p, fmt.Sprintf("%s:%d", ep.Host, ep.Port))
				}
			}
			return nil
		},
	}
}

func watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream config-change notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx()
			stream, err := newClient().Watch(ctx)
			cancel()
			if err != nil {
				return err
			}
			defer stream.Close()

			cli.Info("Watching config changes on %s (Ctrl-C to stop)", serverAddr)
			for {
				ev, err := stream.Next()
				if err != nil {
					return fmt.Errorf("stream closed: %w", err)
				}
				fmt.Printf("%s seq=%d %s/%s\n", cli.IconArrow, ev.Seq, ev.EntityType, ev.EntityName)
			}
		},
	}
}

func healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check admin API health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx()
			defer cancel()
			if err := newClient().Health(ctx); err != nil {
				return err
			}
			cli.Success("Admin API at %s is healthy", serverAddr)
			return nil
		},
	}
}

func parseConfigPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	cfg := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("config entry %q is not key=value", pair)
		}
		cfg[key] = value
	}
	return cfg, nil
}

func printTopic(topic *client.Topic) {
	cli.Header(topic.Name)

	ids := make([]string, 0, len(topic.Partitions))
	for id := range topic.Partitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		cli.KeyValue("partition "+id, fmt.Sprintf("%v", topic.Partitions[id]))
	}

	if len(topic.Config) > 0 {
		cli.Separator()
		printConfig(topic.Config)
	}
}

func printConfig(cfg map[string]string) {
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cli.KeyValue(k, cfg[k])
	}
}

func printTopicMetadata(tm client.TopicMetadata) {
	if tm.Err != 0 {
		cli.Warning("%s: error code %d", tm.Name, tm.Err)
		return
	}
	cli.Header(tm.Name)
	for _, p := range tm.Partitions {
		leader := "none"
		if p.Leader != nil {
			leader = fmt.Sprintf("%s:%d", p.Leader.Host, p.Leader.Port)
		}
		status := ""
		if p.Err != 0 {
			status = fmt.Sprintf(" (error %d)", p.Err)
		}
		cli.KeyValue(fmt.Sprintf("partition %d", p.ID),
			fmt.Sprintf("leader=%s replicas=%d isr=%d%s", leader, len(p.Replicas), len(p.ISR), status))
	}
}
