package kafka

import "github.com/IBM/sarama"

// ClientID names this service in broker logs and quotas.
const ClientID = "coastalstay"

func baseConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = ClientID
	cfg.Version = sarama.V2_8_0_0
	return cfg
}

// producerConfig keeps events of one aggregate on one partition, in order,
// written exactly once.
func producerConfig() *sarama.Config {
	cfg := baseConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Net.MaxOpenRequests = 1
	return cfg
}

func consumerConfig() *sarama.Config {
	cfg := baseConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}
	return cfg
}
